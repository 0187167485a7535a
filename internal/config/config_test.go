package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load with defaults failed: %v", err)
	}
	if cfg.APIBase != "http://localhost:8000" {
		t.Fatalf("unexpected default api base %q", cfg.APIBase)
	}
	if cfg.TopK != 3 {
		t.Fatalf("unexpected default top_k %d", cfg.TopK)
	}
	if cfg.DataDir == "" || cfg.CacheDir == "" {
		t.Fatal("directory defaults must be filled")
	}
}

func TestLoadHonorsEnvironment(t *testing.T) {
	t.Setenv("DOCCHAT_API_BASE", "http://backend:9000/llama")
	t.Setenv("DOCCHAT_TOP_K", "5")
	t.Setenv("DOCCHAT_UPLOAD_MODE", "replace")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.APIBase != "http://backend:9000/llama" || cfg.TopK != 5 || cfg.UploadMode != "replace" {
		t.Fatalf("environment not honored: %#v", cfg)
	}
}

func TestValidateRejectsBadUploadMode(t *testing.T) {
	t.Setenv("DOCCHAT_UPLOAD_MODE", "overwrite")
	if _, err := Load(); err == nil {
		t.Fatal("expected invalid upload mode to fail")
	}
}
