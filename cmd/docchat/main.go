package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hyunsol/docchat/internal/chat"
	"github.com/hyunsol/docchat/internal/config"
	"github.com/hyunsol/docchat/internal/docindex"
	"github.com/hyunsol/docchat/internal/docview"
	"github.com/hyunsol/docchat/internal/query"
	"github.com/hyunsol/docchat/internal/ragapi"
	"github.com/hyunsol/docchat/internal/tui"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("bad configuration:", err)
		os.Exit(1)
	}

	apiBase := flag.String("api", "", "backend base URL (overrides DOCCHAT_API_BASE)")
	dataDir := flag.String("data-dir", "", "directory for session state (overrides DOCCHAT_DATA_DIR)")
	cacheDir := flag.String("cache-dir", "", "directory for the document cache (overrides DOCCHAT_CACHE_DIR)")
	topK := flag.Int("top-k", 0, "number of source chunks to retrieve per question")
	uploadMode := flag.String("upload-mode", "", "how re-uploaded filenames are treated: skip, version or replace")
	noAltScreen := flag.Bool("no-alt-screen", false, "disable the alternate screen buffer")
	flag.Parse()

	if *apiBase != "" {
		cfg.APIBase = *apiBase
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	if *cacheDir != "" {
		cfg.CacheDir = *cacheDir
	}
	if *topK > 0 {
		cfg.TopK = *topK
	}
	if *uploadMode != "" {
		cfg.UploadMode = *uploadMode
	}
	if err := cfg.Validate(); err != nil {
		fmt.Println("bad configuration:", err)
		os.Exit(1)
	}

	api := ragapi.New(cfg.APIBase, &http.Client{Timeout: cfg.HTTPTimeout})
	index := docindex.New(api, 0)
	gateway := query.New(api, index, cfg.TopK)

	store, err := chat.Open(cfg.DataDir)
	if err != nil {
		fmt.Println("failed to open session store:", err)
		os.Exit(1)
	}

	cache, err := docview.NewCache(cfg.CacheDir, nil)
	if err != nil {
		fmt.Println("failed to open document cache:", err)
		os.Exit(1)
	}

	opts := []tea.ProgramOption{}
	if !*noAltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	program := tea.NewProgram(
		tui.New(tui.Config{
			Gateway:    gateway,
			Index:      index,
			API:        api,
			Status:     api,
			Links:      api,
			Docs:       cache,
			Store:      store,
			UploadMode: ragapi.UploadMode(cfg.UploadMode),
		}),
		opts...,
	)

	if _, err := program.Run(); err != nil {
		fmt.Println("program error:", err)
		os.Exit(1)
	}
}
