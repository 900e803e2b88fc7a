package config

// LoadedPrompts holds prompt content read from files.
type LoadedPrompts struct {
	System string
	User   string
}

// orElse fills empty prompts from fallback.
func (p LoadedPrompts) orElse(fallback LoadedPrompts) LoadedPrompts {
	if p.System == "" {
		p.System = fallback.System
	}
	if p.User == "" {
		p.User = fallback.User
	}
	return p
}

// ResolvePrompt picks the first non-empty prompt in priority order:
// loaded from a file, set inline in config, built-in default.
func ResolvePrompt(loadedFromFile, fromConfig, fromDefault string) string {
	if loadedFromFile != "" {
		return loadedFromFile
	}
	if fromConfig != "" {
		return fromConfig
	}
	return fromDefault
}
