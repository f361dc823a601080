// Copyright 2021 Airbus Defence and Space
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package raw

import (
	"fmt"
	"os"
	"sync"
)

// Files is a KeyReaderAt over local files, keys being file paths. A file is
// opened on first read and stays open until Close. The zero value is ready to
// use.
type Files struct {
	mu    sync.Mutex
	files map[string]*os.File
}

func (fs *Files) open(key string) (*os.File, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if f, ok := fs.files[key]; ok {
		return f, nil
	}
	f, err := os.Open(key)
	if err != nil {
		return nil, err
	}
	if fs.files == nil {
		fs.files = map[string]*os.File{}
	}
	fs.files[key] = f
	return f, nil
}

func (fs *Files) ReadAt(key string, p []byte, off int64) (int, error) {
	f, err := fs.open(key)
	if err != nil {
		return 0, err
	}
	return f.ReadAt(p, off)
}

func (fs *Files) Size(key string) (int64, error) {
	fi, err := os.Stat(key)
	if err != nil {
		return 0, err
	}
	if fi.IsDir() {
		return 0, fmt.Errorf("%s is a directory", key)
	}
	return fi.Size(), nil
}

// Len returns the number of open files.
func (fs *Files) Len() int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return len(fs.files)
}

// Close closes all open files. Files may be used again afterwards.
func (fs *Files) Close() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	var err error
	for key, f := range fs.files {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", key, cerr)
		}
		delete(fs.files, key)
	}
	return err
}
