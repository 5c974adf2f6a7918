package utils

// ContainsString returns true iff the provided string slice hay contains string
// needle.
func ContainsString(hay []string, needle string) bool {
	for _, str := range hay {
		if str == needle {
			return true
		}
	}
	return false
}

// RemoveString returns hay without any occurrence of needle. The result never
// shares its backing array with hay.
func RemoveString(hay []string, needle string) []string {
	res := make([]string, 0, len(hay))
	for _, str := range hay {
		if str != needle {
			res = append(res, str)
		}
	}
	return res
}
