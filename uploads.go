package jembe

import (
	"context"
	"errors"
	"fmt"

	"github.com/Jembe/jembe-sub000/pkg/domain"
	"github.com/google/uuid"
)

// ErrNoUploader is returned when Init params carry files and no uploader is set.
var ErrNoUploader = errors.New("files queued without an uploader")

// uploadSlot remembers where an upload id was placed.
type uploadSlot struct {
	container map[string]any
	key       string
}

// upload swaps every domain.File inside Init params for an upload id, ships
// the files, then replaces each id with the descriptor the producer returned.
func (c *Client) upload(ctx context.Context, commands []domain.Command) error {
	var uploads []domain.Upload
	slots := make(map[string]uploadSlot)

	for _, cmd := range commands {
		if cmd.Type != domain.CommandInit {
			continue
		}
		collectFiles(cmd.Params, &uploads, slots)
	}
	if len(uploads) == 0 {
		return nil
	}
	if c.uploader == nil {
		return ErrNoUploader
	}

	stored, err := c.uploader.Upload(ctx, uploads)
	if err != nil {
		return fmt.Errorf("upload: %w", err)
	}
	for id, slot := range slots {
		if desc, ok := stored[id]; ok {
			slot.container[slot.key] = desc
		} else {
			delete(slot.container, slot.key)
		}
	}
	c.logger.Debug("files uploaded", "count", len(uploads), "stored", len(stored))
	return nil
}

func collectFiles(params map[string]any, uploads *[]domain.Upload, slots map[string]uploadSlot) {
	for key, v := range params {
		var file domain.File
		switch val := v.(type) {
		case domain.File:
			file = val
		case *domain.File:
			if val == nil {
				continue
			}
			file = *val
		case map[string]any:
			collectFiles(val, uploads, slots)
			continue
		default:
			continue
		}
		id := uuid.NewString()
		params[key] = id
		*uploads = append(*uploads, domain.Upload{ID: id, File: file})
		slots[id] = uploadSlot{container: params, key: key}
	}
}
