package config

import (
	"testing"
)

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		shouldSet    bool
		want         string
	}{
		{
			name:         "returns environment variable when set",
			key:          "TEST_VAR",
			defaultValue: "default",
			envValue:     "custom",
			shouldSet:    true,
			want:         "custom",
		},
		{
			name:         "returns default when environment variable not set",
			key:          "TEST_VAR_MISSING",
			defaultValue: "default",
			envValue:     "",
			shouldSet:    false,
			want:         "default",
		},
		{
			name:         "returns default when environment variable is empty string",
			key:          "TEST_VAR_EMPTY",
			defaultValue: "default",
			envValue:     "",
			shouldSet:    true,
			want:         "default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.shouldSet {
				t.Setenv(tt.key, tt.envValue)
			}

			got := getEnv(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnv() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetEnvAsInt(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue int
		envValue     string
		shouldSet    bool
		want         int
	}{
		{
			name:         "parses integer environment variable",
			key:          "TEST_INT",
			defaultValue: 10,
			envValue:     "42",
			shouldSet:    true,
			want:         42,
		},
		{
			name:         "returns default when not set",
			key:          "TEST_INT_MISSING",
			defaultValue: 10,
			shouldSet:    false,
			want:         10,
		},
		{
			name:         "returns default on non-numeric value",
			key:          "TEST_INT_BAD",
			defaultValue: 10,
			envValue:     "not-a-number",
			shouldSet:    true,
			want:         10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.shouldSet {
				t.Setenv(tt.key, tt.envValue)
			}

			got := getEnvAsInt(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnvAsInt() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	t.Run("fails without GOOGLE_API_KEY", func(t *testing.T) {
		t.Setenv("GOOGLE_API_KEY", "")
		t.Setenv("PINECONE_API_KEY", "pc-key")

		_, err := Load()
		if err == nil {
			t.Fatal("expected error when GOOGLE_API_KEY is missing")
		}
	})

	t.Run("fails without PINECONE_API_KEY", func(t *testing.T) {
		t.Setenv("GOOGLE_API_KEY", "g-key")
		t.Setenv("PINECONE_API_KEY", "")

		_, err := Load()
		if err == nil {
			t.Fatal("expected error when PINECONE_API_KEY is missing")
		}
	})

	t.Run("fails when openai provider selected without key", func(t *testing.T) {
		t.Setenv("GOOGLE_API_KEY", "g-key")
		t.Setenv("PINECONE_API_KEY", "pc-key")
		t.Setenv("EMBEDDING_PROVIDER", "openai")
		t.Setenv("OPENAI_API_KEY", "")

		_, err := Load()
		if err == nil {
			t.Fatal("expected error when OPENAI_API_KEY is missing")
		}
	})

	t.Run("applies defaults", func(t *testing.T) {
		t.Setenv("GOOGLE_API_KEY", "g-key")
		t.Setenv("PINECONE_API_KEY", "pc-key")
		t.Setenv("EMBEDDING_PROVIDER", "")
		t.Setenv("MAX_UPLOAD_BYTES", "")
		t.Setenv("EMBEDDING_RATE_LIMIT", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}

		if cfg.EmbeddingProvider != "google" {
			t.Errorf("EmbeddingProvider = %q, want google", cfg.EmbeddingProvider)
		}
		if cfg.EmbeddingDimensions != 768 {
			t.Errorf("EmbeddingDimensions = %d, want 768", cfg.EmbeddingDimensions)
		}
		if cfg.MaxUploadBytes != 5<<20 {
			t.Errorf("MaxUploadBytes = %d, want %d", cfg.MaxUploadBytes, 5<<20)
		}
		if cfg.MaxIndexedChunks != 100 {
			t.Errorf("MaxIndexedChunks = %d, want 100", cfg.MaxIndexedChunks)
		}
		if cfg.ChatTopK != 5 {
			t.Errorf("ChatTopK = %d, want 5", cfg.ChatTopK)
		}
		if cfg.PineconeIndex != "casa-ramadan-2026" {
			t.Errorf("PineconeIndex = %q, want casa-ramadan-2026", cfg.PineconeIndex)
		}
	})
}
