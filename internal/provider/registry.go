package provider

import "strings"

// New constructs a Provider for the given registry key. The key set is
// closed here; nothing downstream ever branches on provider identity.
func New(name string, cfg Config, observer Observer) (Provider, error) {
	switch strings.ToLower(name) {
	case "openai":
		return NewOpenAI(cfg, observer)
	case "anthropic":
		return NewAnthropic(cfg, observer)
	case "huggingface":
		return NewHuggingFace(cfg, observer)
	default:
		return nil, &Error{Provider: name, Err: ErrUnknownProvider}
	}
}

// WithAPIKey returns a copy of the config with the named provider's
// credential replaced. Unknown names return the config unchanged; the
// registry reports those on construction.
func (c Config) WithAPIKey(name, key string) Config {
	switch strings.ToLower(name) {
	case "openai":
		c.OpenAI.APIKey = key
	case "anthropic":
		c.Anthropic.APIKey = key
	case "huggingface":
		c.HuggingFace.APIKey = key
	}
	return c
}
