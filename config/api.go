package config

// APIConfig configures the HTTP server started by "crewsched serve".
type APIConfig struct {
	Addr string `json:"addr"`
	// Token, when set, is required as a bearer token on /api routes.
	Token string `json:"token"`
}

func (c *APIConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":9100"
	}
}
