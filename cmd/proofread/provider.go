package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/fwojciec/proofread"
	"github.com/fwojciec/proofread/anthropic"
	"github.com/fwojciec/proofread/gemini"
	"github.com/fwojciec/proofread/openai"
)

// apiKeys holds provider keys from the environment. Env is only read in
// main().
type apiKeys struct {
	OpenAI    string
	Anthropic string
	Gemini    string
}

// providerConfig is the resolved provider selection.
type providerConfig struct {
	name string
	key  string
}

// resolveConfig picks the provider and its key. An explicit provider wins;
// otherwise the provider is detected from the single key that is set.
func resolveConfig(providerFlag, apiKeyFlag string, keys apiKeys) (providerConfig, error) {
	name := strings.ToLower(providerFlag)

	if name == "" {
		var found []string
		if keys.OpenAI != "" {
			found = append(found, "openai")
		}
		if keys.Anthropic != "" {
			found = append(found, "anthropic")
		}
		if keys.Gemini != "" {
			found = append(found, "gemini")
		}
		switch len(found) {
		case 0:
			if apiKeyFlag != "" {
				name = "openai"
				break
			}
			return providerConfig{}, fmt.Errorf("no API key found: set OPENAI_API_KEY, ANTHROPIC_API_KEY or GEMINI_API_KEY (or use -provider and -api-key flags)")
		case 1:
			name = found[0]
		default:
			return providerConfig{}, fmt.Errorf("multiple API keys found (%s): use -provider flag to select", strings.Join(found, ", "))
		}
	}

	// Explicit flag overrides env var.
	key := apiKeyFlag
	var envName string
	switch name {
	case "openai":
		envName = "OPENAI_API_KEY"
		if key == "" {
			key = keys.OpenAI
		}
	case "anthropic":
		envName = "ANTHROPIC_API_KEY"
		if key == "" {
			key = keys.Anthropic
		}
	case "gemini":
		envName = "GEMINI_API_KEY"
		if key == "" {
			key = keys.Gemini
		}
	default:
		return providerConfig{}, fmt.Errorf("unknown provider %q: must be \"openai\", \"anthropic\" or \"gemini\"", name)
	}
	if key == "" {
		return providerConfig{}, fmt.Errorf("%s not set (use -api-key flag or environment variable)", envName)
	}
	return providerConfig{name: name, key: key}, nil
}

// resolveProvider selects and constructs the provider.
func resolveProvider(ctx context.Context, providerFlag, apiKeyFlag, model string, keys apiKeys) (proofread.Provider, error) {
	cfg, err := resolveConfig(providerFlag, apiKeyFlag, keys)
	if err != nil {
		return nil, err
	}
	switch cfg.name {
	case "anthropic":
		var opts []anthropic.Option
		if model != "" {
			opts = append(opts, anthropic.WithModel(model))
		}
		return anthropic.New(cfg.key, opts...), nil
	case "gemini":
		var opts []gemini.Option
		if model != "" {
			opts = append(opts, gemini.WithModel(model))
		}
		client, err := gemini.New(ctx, cfg.key, opts...)
		if err != nil {
			return nil, fmt.Errorf("gemini: %w", err)
		}
		return client, nil
	default:
		var opts []openai.Option
		if model != "" {
			opts = append(opts, openai.WithModel(model))
		}
		return openai.New(cfg.key, opts...), nil
	}
}
