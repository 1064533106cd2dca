package orchestrator

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/docrunner/docrunner/internal/driver"
)

// artifactStore owns the artifact directory for one run. Initialization
// clears the previous run's media so the directory always reflects exactly
// one run, and stamps it with the run id.
type artifactStore struct {
	root          string
	screenshotDir string
	videoDir      string
}

func initArtifacts(root, runID string) (*artifactStore, error) {
	a := &artifactStore{
		root:          root,
		screenshotDir: filepath.Join(root, "screenshots"),
		videoDir:      filepath.Join(root, "videos"),
	}
	for _, dir := range []string{a.screenshotDir, a.videoDir} {
		if err := os.RemoveAll(dir); err != nil {
			return nil, err
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}
	if err := os.WriteFile(filepath.Join(root, "run.id"), []byte(runID+"\n"), 0644); err != nil {
		return nil, err
	}
	return a, nil
}

// saveScreenshot captures and stores one screenshot, returning the stored
// file name renderers use to reference it.
func (a *artifactStore) saveScreenshot(session driver.Session, name string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	buf, err := session.Screenshot(ctx)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(a.screenshotDir, name), buf, 0644); err != nil {
		return "", err
	}
	return name, nil
}

// adoptVideo moves a session recording into the run's video directory under
// the case id, returning the stored file name.
func (a *artifactStore) adoptVideo(path, caseID string) (string, error) {
	name := caseID + filepath.Ext(path)
	dest := filepath.Join(a.videoDir, name)
	if err := os.Rename(path, dest); err != nil {
		return "", err
	}
	return name, nil
}
