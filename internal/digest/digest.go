// Copyright 2025 The reprotest Authors
// SPDX-License-Identifier: MIT

// Package digest computes content fingerprints of build artifacts.
package digest

import (
	"fmt"
	"io"
	"os"

	"zombiezen.com/go/nix"
)

// bufferSize is the size of the scratch buffer used to stream file contents.
// Artifacts can be arbitrarily large, so files are never read whole.
const bufferSize = 64 * 1024

// File computes the digest of the file at the given path.
// Memory use is bounded regardless of the file's size.
func File(path string) (nix.Hash, error) {
	f, err := os.Open(path)
	if err != nil {
		return nix.Hash{}, err
	}
	defer f.Close()
	h := nix.NewHasher(nix.SHA256)
	buf := make([]byte, bufferSize)
	for {
		n, err := f.Read(buf)
		h.Write(buf[:n])
		if err == io.EOF {
			return h.SumHash(), nil
		}
		if err != nil {
			return nix.Hash{}, fmt.Errorf("digest %s: %v", path, err)
		}
	}
}
