package config

// EnvPrefix scopes every environment variable the service reads.
const EnvPrefix = "m3class"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

const (
	EnvAppEnv                 = "M3CLASS_APP_ENV"
	EnvPort                   = "M3CLASS_APP_PORT"
	EnvDBDSN                  = "M3CLASS_DB_DSN"
	EnvDBHost                 = "M3CLASS_DB_HOST"
	EnvDBUser                 = "M3CLASS_DB_USER"
	EnvDBName                 = "M3CLASS_DB_NAME"
	EnvRedisURL               = "M3CLASS_REDIS_URL"
	EnvJWTSecret              = "M3CLASS_JWT_SECRET"
	EnvJWTIssuer              = "M3CLASS_JWT_ISSUER"
	EnvJWTExpMins             = "M3CLASS_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "M3CLASS_REFRESH_TOKEN_TTL_MINUTES"
	EnvGCPProjectID           = "M3CLASS_GCP_PROJECT_ID"
	EnvPubSubEventsTopic      = "M3CLASS_PUBSUB_EVENTS_TOPIC"
	EnvPubSubEventsSub        = "M3CLASS_PUBSUB_EVENTS_SUBSCRIPTION"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
