package config

const EnvPrefix = "COMANDA"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv            = "COMANDA_APP_ENV"
	EnvPort              = "COMANDA_APP_PORT"
	EnvDBDSN             = "COMANDA_DB_DSN"
	EnvDBHost            = "COMANDA_DB_HOST"
	EnvDBUser            = "COMANDA_DB_USER"
	EnvDBName            = "COMANDA_DB_NAME"
	EnvRedisURL          = "COMANDA_REDIS_URL"
	EnvBackendBaseURL    = "COMANDA_BACKEND_BASE_URL"
	EnvReturnURLTemplate = "COMANDA_CHECKOUT_RETURN_URL_TEMPLATE"
	EnvUseSQLite         = "COMANDA_USE_SQLITE"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
