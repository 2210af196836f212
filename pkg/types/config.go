package types

type Config struct {
	Environment     string `envconfig:"ENVIRONMENT" default:"development"`
	ServerPort      uint   `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeoutSec  uint   `envconfig:"READ_TIMEOUT_SEC" default:"10"`
	WriteTimeoutSec uint   `envconfig:"WRITE_TIMEOUT_SEC" default:"15"`

	// Remote event API
	APIBaseURL     string `envconfig:"API_BASE_URL" default:"http://localhost"`
	APITimeoutSec  uint   `envconfig:"API_TIMEOUT_SEC" default:"20"`
	CSRFCookieName string `envconfig:"CSRF_COOKIE_NAME" default:"csrftoken"`

	// Wizard drafts are kept in memory unless a database is configured
	DatabaseURL      string `envconfig:"DATABASE_URL"`
	DatabaseMaxConns int32  `envconfig:"DATABASE_MAX_CONNS" default:"4"`
	DraftMaxAgeHrs   uint   `envconfig:"DRAFT_MAX_AGE_HRS" default:"168"`

	// basic (6 steps) or rich (7 steps, multiple forms)
	WizardVariant string `envconfig:"WIZARD_VARIANT" default:"rich"`

	// Session guard: presence, expiry or jwks
	AuthTokenCheck string `envconfig:"AUTH_TOKEN_CHECK" default:"presence"`
	JWKSURL        string `envconfig:"JWKS_URL"`

	SessionMaxAgeSec int `envconfig:"SESSION_MAX_AGE_SEC" default:"604800"` // 7 days

	// Cookie encryption keys (base64 encoded)
	// openssl rand -base64 32
	// to generate values
	CookieHashKey  string `envconfig:"COOKIE_HASH_KEY"`  // 32 or 64 bytes
	CookieBlockKey string `envconfig:"COOKIE_BLOCK_KEY"` // 16, 24, or 32 bytes
	CookieSecure   bool   `envconfig:"COOKIE_SECURE" default:"true"`

	// Branding assets uploaded from the email template step
	S3BucketName string `envconfig:"S3_BUCKET_NAME"`

	// Pricing rates are owned by the backend operator, not hard-coded
	GSTRate           float64 `envconfig:"GST_RATE" default:"0.18"`
	ProcessingFeeRate float64 `envconfig:"PROCESSING_FEE_RATE" default:"0.05"`
	TokenUnitPrice    float64 `envconfig:"TOKEN_UNIT_PRICE" default:"5"`
}
