// Package weights manages the accelerator weight bundles: fetching
// them over HTTP and watching the local directory for swapped files.
package weights

import (
	"path/filepath"

	"github.com/cavaliercoder/grab"
	"github.com/fsnotify/fsnotify"

	"github.com/edgevision/inferpipe/pkg/logger"
	"github.com/edgevision/inferpipe/pkg/os"
)

const downloadConcurrency = 2

// Manager fetches weight bundles and notifies on local changes.
type Manager struct {
	dir     string
	client  *grab.Client
	watcher *fsnotify.Watcher
	log     *logger.Logger
}

func NewManager(dir string, log *logger.Logger) (*Manager, error) {
	if err := os.CheckCreateDir(dir); err != nil {
		return nil, err
	}
	return &Manager{
		dir:    dir,
		client: grab.NewClient(),
		log:    log,
	}, nil
}

// Fetch downloads the given bundles into the manager's directory and
// returns the paths of the files that arrived.
func (m *Manager) Fetch(urls ...string) []string {
	reqs := make([]*grab.Request, 0, len(urls))
	for _, url := range urls {
		req, err := grab.NewRequest(m.dir, url)
		if err != nil {
			m.log.Error().Err(err).Str("url", url).Msg("Bad weight bundle URL")
			continue
		}
		reqs = append(reqs, req)
	}

	var files []string
	for resp := range m.client.DoBatch(downloadConcurrency, reqs...) {
		if err := resp.Err(); err != nil {
			m.log.Error().Err(err).Msg("Weight bundle download failed")
		} else {
			m.log.Info().Str("file", resp.Filename).Msg("Weight bundle downloaded")
			files = append(files, resp.Filename)
		}
	}
	return files
}

// Watch reports weight files changed on disk until Close is called.
// The callback receives the path of each written or created file.
func (m *Manager) Watch(onChange func(path string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(m.dir); err != nil {
		watcher.Close()
		return err
	}
	m.watcher = watcher

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
					m.log.Info().Str("file", filepath.Base(event.Name)).Msg("Weight bundle changed")
					onChange(event.Name)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				m.log.Error().Err(err).Msg("Weight watcher error")
			}
		}
	}()
	return nil
}

func (m *Manager) Close() error {
	if m.watcher != nil {
		return m.watcher.Close()
	}
	return nil
}
