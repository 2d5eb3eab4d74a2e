package remote

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/matsen/bibscrape/internal/library"
)

// PushResult reports what Push did with each key.
type PushResult struct {
	Uploaded []string `json:"uploaded"`
	Present  []string `json:"present"`
	Missing  []string `json:"missing"` // no local PDF
}

// Push uploads the local PDF of each key that the host does not have yet.
// Keys without a local PDF are reported, not treated as errors.
func Push(ctx context.Context, c Client, keys []string, papersDir, remoteDir string) (*PushResult, error) {
	log := zerolog.Ctx(ctx)
	result := &PushResult{}

	for _, key := range keys {
		local := library.LocalPath(papersDir, key)
		if _, err := os.Stat(local); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				result.Missing = append(result.Missing, key)
				continue
			}
			return result, fmt.Errorf("checking %s: %w", local, err)
		}

		remote := library.RemotePath(remoteDir, key)
		exists, err := c.Exists(ctx, remote)
		if err != nil {
			return result, err
		}
		if exists {
			result.Present = append(result.Present, key)
			continue
		}

		if err := c.Upload(ctx, local, remote); err != nil {
			return result, err
		}
		log.Info().Str("key", key).Str("remote", remote).Msg("uploaded")
		result.Uploaded = append(result.Uploaded, key)
	}
	return result, nil
}
