package dataset

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const cacheVersion = "v1"

func (l *Loader) cacheFilename(csvPath string) string {
	name := strings.ReplaceAll(filepath.Clean(csvPath), string(filepath.Separator), "_")
	return filepath.Join(l.cacheDir, fmt.Sprintf("%s_%s.gob", name, cacheVersion))
}

func (l *Loader) saveSnapshot(csvPath string, info os.FileInfo, table *Table) error {
	if err := os.MkdirAll(l.cacheDir, 0755); err != nil {
		return err
	}

	file, err := os.Create(l.cacheFilename(csvPath))
	if err != nil {
		return err
	}
	defer file.Close()

	snap := snapshot{
		Version:       cacheVersion,
		SourceModTime: info.ModTime(),
		SourceSize:    info.Size(),
		Records:       table.records,
		Skipped:       table.skipped,
	}
	return gob.NewEncoder(file).Encode(&snap)
}

func (l *Loader) loadSnapshot(csvPath string) (*snapshot, error) {
	file, err := os.Open(l.cacheFilename(csvPath))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var snap snapshot
	if err := gob.NewDecoder(file).Decode(&snap); err != nil {
		return nil, err
	}
	return &snap, nil
}
