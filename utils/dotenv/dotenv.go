package dotenv

import (
	"os"
	"regexp"

	"github.com/joho/godotenv"
)

const (
	EnvKey  = "STREEMZA_ENV"
	DevEnv  = "dev"
	ProdEnv = "prod"
	TestEnv = "test"
)

// LoadDotEnvs loads the .env files following the convention: https://github.com/bkeepers/dotenv#what-other-env-files-can-i-use
// It only need to be called once in main function, other code can use env through os.Getenv('ENV_NAME') during runtime
func LoadDotEnvs() error {
	loadDotEnvs("")
	return nil
}

// GetEnv returns the runtime env, "dev" when unset.
func GetEnv() string {
	env := os.Getenv(EnvKey)
	if env == "" {
		env = DevEnv
	}
	return env
}

func IsProdEnv() bool {
	return GetEnv() == ProdEnv
}

func loadDotEnvs(rootPath string) {
	env := GetEnv()

	// .env.[runtime_env].local has highest priority, usually contains username and password and other sensitive information
	godotenv.Load(rootPath + ".env." + env + ".local")
	godotenv.Load(rootPath + ".env.local")
	// .env.[runtime_env] usually contains db connection information
	godotenv.Load(rootPath + ".env." + env)
	// .env usually contains shared variables(which might be overwritten by envs above)
	godotenv.Load(rootPath + ".env")
}

// Have to write this helper function due to a known issue of godotenv
// https://github.com/joho/godotenv/issues/43
func LoadDotEnvsInTests() error {
	re := regexp.MustCompile(`^(.*streemza)`)
	cwd, _ := os.Getwd()
	rootPath := re.Find([]byte(cwd))
	if len(rootPath) == 0 {
		return nil
	}

	godotenv.Load(string(rootPath) + "/" + ".env.test")
	return nil
}
