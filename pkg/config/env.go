package config

// EnvPrefix is passed to envconfig; individual fields carry fully-qualified
// env var names so the prefix stays empty.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "BAZARLY_DB_DSN"
	EnvDBHost = "BAZARLY_DB_HOST"
	EnvDBUser = "BAZARLY_DB_USER"
	EnvDBName = "BAZARLY_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
