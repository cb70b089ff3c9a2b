package recipecapture

type AppConfig struct {
	DefaultPhotoTitle string `env:"DEFAULT_PHOTO_TITLE,default=Recetë nga kamera"`
	JournalPath       string `env:"JOURNAL_PATH"`
	OtelEnabled       bool   `env:"OTEL_ENABLED,default=false"`
	AlertWebhookURL   string `env:"ALERT_WEBHOOK_URL"`
}

type CameraConfig struct {
	PhotosDir            string `env:"CAMERA_PHOTOS_DIR,default=artifacts/photos"`
	Permission           string `env:"CAMERA_PERMISSION,default=grant"`
	ReRequestAfterDenial bool   `env:"CAMERA_REREQUEST_AFTER_DENIAL,default=false"`
	Supported            bool   `env:"CAMERA_SUPPORTED,default=true"`
}

type StorageConfig struct {
	Backend  string `env:"IMAGE_STORE,default=memory"`
	Dir      string `env:"IMAGE_STORE_DIR,default=artifacts/images"`
	S3Bucket string `env:"IMAGE_STORE_S3_BUCKET"`
	S3Prefix string `env:"IMAGE_STORE_S3_PREFIX,default=recipes/"`
}

type AuthConfig struct {
	Backend string `env:"AUTH_BACKEND,default=memory"`
	URL     string `env:"SUPABASE_URL"`
	AnonKey string `env:"SUPABASE_ANON_KEY"`
}

type NamingConfig struct {
	Backend   string  `env:"NAMER,default=static"`
	ModelID   string  `env:"NAMER_MODEL_ID"`
	MaxTokens int32   `env:"NAMER_MAX_TOKENS,default=256"`
	TopP      float32 `env:"NAMER_TOP_P,default=0.9"`
}
