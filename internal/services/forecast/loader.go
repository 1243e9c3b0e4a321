package forecast

import (
	"errors"
	"fmt"
	"os"

	domsvc "PatientPulse/internal/domain/service"
	"PatientPulse/pkg/config"
	"PatientPulse/pkg/logger"

	"gopkg.in/yaml.v3"
)

// Model file kinds.
const (
	KindForest = "forest"
	KindLinear = "linear"
)

type modelFile struct {
	Kind       string `yaml:"kind"`
	forestFile `yaml:",inline"`
	linearFile `yaml:",inline"`
}

// LoadModel resolves the configured model. A remote URL takes precedence,
// otherwise Path then FallbackPath are tried. On failure the returned
// model is nil and the error joins every attempt.
func LoadModel(cfg config.ModelConfig, log *logger.Logger) (domsvc.Model, error) {
	if log == nil {
		log = logger.NewNop()
	}
	if cfg.URL != "" {
		log.Info("using remote model", logger.String("url", cfg.URL))
		return NewHTTPModel(cfg.URL, cfg.Timeout, cfg.Retries+1), nil
	}

	var errs []error
	for _, path := range []string{cfg.Path, cfg.FallbackPath} {
		if path == "" {
			continue
		}
		m, err := LoadModelFile(path)
		if err != nil {
			log.Warn("model load failed", logger.String("path", path), logger.Error(err))
			errs = append(errs, err)
			continue
		}
		log.Info("model loaded", logger.String("path", path))
		return m, nil
	}
	if len(errs) == 0 {
		return nil, fmt.Errorf("no model path configured")
	}
	return nil, errors.Join(errs...)
}

// LoadModelFile decodes a YAML (or JSON) model export.
func LoadModelFile(path string) (domsvc.Model, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model %s: %w", path, err)
	}
	return ParseModel(b)
}

// ParseModel builds a model from its serialized form.
func ParseModel(b []byte) (domsvc.Model, error) {
	var f modelFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse model: %w", err)
	}
	switch f.Kind {
	case KindForest:
		return NewForestModel(f.Features, f.Trees)
	case KindLinear:
		return NewLinearModel(f.Intercept, f.Coefficients)
	default:
		return nil, fmt.Errorf("unknown model kind %q", f.Kind)
	}
}
