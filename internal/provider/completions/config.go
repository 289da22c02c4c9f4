package completions

// Config contains completion service settings.
//   - BaseURL: service root; requests go to BaseURL + "/completions"
//   - Timeout: HTTP client timeout in seconds (the per-request network
//     timeout is applied by the orchestrator on top of it)
//   - RateLimit/RateBurst: client-side request rate; zero disables limiting
type Config struct {
	BaseURL   string  `env:"COMPLETIONS_BASE_URL"   envDefault:"http://localhost:8090/v1"`
	APIKey    string  `env:"COMPLETIONS_API_KEY"`
	Timeout   int     `env:"COMPLETIONS_TIMEOUT"    envDefault:"10"`
	RateLimit float64 `env:"COMPLETIONS_RATE_LIMIT" envDefault:"10"`
	RateBurst int     `env:"COMPLETIONS_RATE_BURST" envDefault:"5"`
}
