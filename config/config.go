package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/Aashish23092/electricity-invoice-ocr/utils/invoice"
	"gopkg.in/yaml.v3"
)

type Config struct {
	ServerPort           string
	TesseractDataPath    string
	TesseractLanguage    string
	PaddleOCRURL         string
	MaxFileSize          int64
	MaxParallelDocuments int
	DebugExtraction      bool
	Thresholds           invoice.Thresholds
}

// LoadConfig reads the configuration from the environment. Thresholds start
// from the built-in defaults, then THRESHOLDS_FILE, then the per-threshold
// environment variables.
func LoadConfig() (*Config, error) {
	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		serverPort = "8080"
	}

	tesseractDataPath := os.Getenv("TESSDATA_PREFIX")
	if tesseractDataPath == "" {
		tesseractDataPath = "/usr/share/tesseract-ocr/5/tessdata/"
	}

	tesseractLanguage := os.Getenv("TESSERACT_LANG")
	if tesseractLanguage == "" {
		tesseractLanguage = "spa"
	}

	maxFileSizeMB, err := intEnv("MAX_FILE_SIZE_MB", 10)
	if err != nil {
		return nil, err
	}
	maxParallel, err := intEnv("MAX_PARALLEL_DOCUMENTS", 4)
	if err != nil {
		return nil, err
	}
	if maxParallel < 1 {
		maxParallel = 1
	}

	th, err := LoadThresholds()
	if err != nil {
		return nil, err
	}

	return &Config{
		ServerPort:           serverPort,
		TesseractDataPath:    tesseractDataPath,
		TesseractLanguage:    tesseractLanguage,
		PaddleOCRURL:         os.Getenv("PADDLE_OCR_API_URL"),
		MaxFileSize:          int64(maxFileSizeMB) * 1024 * 1024,
		MaxParallelDocuments: maxParallel,
		DebugExtraction:      boolEnv("DEBUG_EXTRACTION"),
		Thresholds:           th,
	}, nil
}

// LoadThresholds builds the extraction thresholds from defaults, the optional
// YAML file named by THRESHOLDS_FILE and environment overrides.
func LoadThresholds() (invoice.Thresholds, error) {
	th := invoice.DefaultThresholds()

	if path := os.Getenv("THRESHOLDS_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return th, fmt.Errorf("failed to read thresholds file: %w", err)
		}
		if err := yaml.Unmarshal(data, &th); err != nil {
			return th, fmt.Errorf("failed to parse thresholds file: %w", err)
		}
	}

	overrides := []struct {
		key string
		dst *float64
	}{
		{"MIN_ENERGY_COST_EUR", &th.MinEnergyCost},
		{"MIN_PRICE_PER_KWH", &th.MinPricePerKwh},
		{"MAX_PRICE_PER_KWH", &th.MaxPricePerKwh},
		{"PREFERRED_MIN_PRICE_PER_KWH", &th.PreferredMinPricePerKwh},
		{"PREFERRED_MAX_PRICE_PER_KWH", &th.PreferredMaxPricePerKwh},
		{"REFERENCE_PRICE_PER_KWH", &th.ReferencePricePerKwh},
		{"MAX_KWH_PER_PERIOD", &th.MaxKwhPerPeriod},
	}
	for _, o := range overrides {
		raw := os.Getenv(o.key)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return th, fmt.Errorf("invalid %s %q: %w", o.key, raw, err)
		}
		*o.dst = v
	}

	if err := th.Validate(); err != nil {
		return th, fmt.Errorf("invalid thresholds: %w", err)
	}
	return th, nil
}

func intEnv(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

func boolEnv(key string) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && v
}
