package services

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"bizdash/internal/models"
)

// Snapshot encoding must keep absent and zero sale amounts distinct.
const snapshotVersion = "v1"

type snapshot struct {
	Dataset models.Dataset `json:"dataset"`
	SavedAt time.Time      `json:"saved_at"`
}

func (l *Loader) snapshotPath(salesPath, productsPath string) string {
	key := strings.NewReplacer("/", "_", "\\", "_", ":", "_").Replace(salesPath + "+" + productsPath)
	return filepath.Join(l.cacheDir, fmt.Sprintf("%s_%s.json", key, snapshotVersion))
}

func (l *Loader) saveSnapshot(salesPath, productsPath string, data models.Dataset) error {
	if err := os.MkdirAll(l.cacheDir, 0o755); err != nil {
		return err
	}

	file, err := os.Create(l.snapshotPath(salesPath, productsPath))
	if err != nil {
		return err
	}
	defer file.Close()

	return json.NewEncoder(file).Encode(snapshot{Dataset: data, SavedAt: time.Now()})
}

func (l *Loader) loadSnapshot(salesPath, productsPath string) (*snapshot, error) {
	file, err := os.Open(l.snapshotPath(salesPath, productsPath))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var snap snapshot
	if err := json.NewDecoder(file).Decode(&snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// snapshotFresh reports whether a snapshot saved at savedAt postdates every file.
func snapshotFresh(savedAt time.Time, paths ...string) bool {
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil || !info.ModTime().Before(savedAt) {
			return false
		}
	}
	return true
}
