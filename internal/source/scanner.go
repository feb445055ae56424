package source

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ScanDir discovers JSON dumps directly inside dir, newest first.
func ScanDir(dir string) ([]DiscoveredFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var files []DiscoveredFile
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".json") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, DiscoveredFile{
			Path:    filepath.Join(dir, e.Name()),
			ModTime: info.ModTime(),
			Size:    info.Size(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		if files[i].ModTime.Equal(files[j].ModTime) {
			return files[i].Path > files[j].Path
		}
		return files[i].ModTime.After(files[j].ModTime)
	})
	return files, nil
}

// Resolve turns a path argument into the dump to import: the file itself, or
// the newest JSON file when path is a directory.
func Resolve(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return path, nil
	}
	files, err := ScanDir(path)
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		return "", ErrNoState
	}
	return files[0].Path, nil
}
