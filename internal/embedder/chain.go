package embedder

import (
	"context"
	"fmt"
	"log"
)

// Config holds backend selection configuration.
type Config struct {
	// PreferenceOrder lists backend kinds from most to least preferred.
	// KindLexical is appended when absent so the chain always terminates.
	PreferenceOrder []Kind

	// ModelRef names the model for the service and sentence variants.
	ModelRef string

	// ServiceURL is the base URL of the dense embedding service.
	ServiceURL string
}

// DefaultPreferenceOrder tries the dense service, then the in-process
// sentence model, then the lexical vectorizer.
var DefaultPreferenceOrder = []Kind{KindService, KindSentence, KindLexical}

// NewChain walks the preference order and adopts the first backend whose
// initialization succeeds. The chosen backend is fixed for the lifetime of
// the process. Failed initializations are logged and skipped; the lexical
// vectorizer cannot fail, so the chain always yields a backend.
func NewChain(ctx context.Context, cfg Config) (Backend, error) {
	order := cfg.PreferenceOrder
	if len(order) == 0 {
		order = DefaultPreferenceOrder
	}
	if !containsKind(order, KindLexical) {
		order = append(append([]Kind{}, order...), KindLexical)
	}

	for _, kind := range order {
		backend, err := newBackend(ctx, kind, cfg)
		if err != nil {
			log.Printf("[embedder] %s backend unavailable: %v", kind, err)
			continue
		}
		log.Printf("[embedder] using %s backend (fingerprint %s)", kind, backend.Fingerprint())
		return backend, nil
	}

	// Unreachable: the lexical constructor cannot fail.
	return nil, fmt.Errorf("%w: all backends failed to initialize", ErrBackendUnavailable)
}

func newBackend(ctx context.Context, kind Kind, cfg Config) (Backend, error) {
	switch kind {
	case KindService:
		return NewServiceBackend(ctx, cfg.ServiceURL, cfg.ModelRef)
	case KindSentence:
		return NewSentenceBackend(cfg.ModelRef)
	case KindLexical:
		return NewLexicalBackend(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

func containsKind(kinds []Kind, k Kind) bool {
	for _, kind := range kinds {
		if kind == k {
			return true
		}
	}
	return false
}
