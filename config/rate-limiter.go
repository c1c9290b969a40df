package config

// Rate limit configuration
type RateLimitConfig struct {
	Rate  int `env:"RATE" envDefault:"10000"` // Tokens refilled per minute
	Burst int `env:"BURST" envDefault:"1500"` // Bucket capacity
}

var DefaultRateLimitConfig = RateLimitConfig{
	Rate:  10000,
	Burst: 1500,
}
