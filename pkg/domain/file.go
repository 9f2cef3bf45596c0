package domain

import "io"

// File is a pending upload placed inside init params.
// It is swapped for an upload id before the request is sent.
type File struct {
	Name        string
	ContentType string
	Body        io.Reader
}

// Upload is one file travelling on the upload side-channel.
type Upload struct {
	ID   string
	File File
}

// StoredFile describes a file accepted by the producer's upload endpoint.
type StoredFile map[string]any
