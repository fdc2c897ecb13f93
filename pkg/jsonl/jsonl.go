package jsonl

import (
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"os"
	"sync"
)

// FileModeReadOnly rw-r--r-- (擁有者讀寫，其他人唯讀)
const FileModeReadOnly fs.FileMode = 0644

// File 一行一筆 JSON 的 append-only 檔案
type File struct {
	file *os.File
	mu   sync.Mutex
	// sync: 每次 Append 後是否 fsync
	sync bool
}

// Option 設定 File 的選項
type Option func(*File)

// WithSync 每次 Append 後強制刷入硬碟
func WithSync() Option {
	return func(f *File) {
		f.sync = true
	}
}

// Open 開啟或建立檔案
// O_RDWR 讀寫模式
// O_APPEND 每次寫入時自動跳到文件末尾
// O_CREATE 如果文件不存在則建立
func Open(path string, opts ...Option) (*File, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_RDWR, FileModeReadOnly)
	if err != nil {
		return nil, err
	}
	f := &File{file: file}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Append 寫入一筆資料
func (f *File) Append(v any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := json.NewEncoder(f.file).Encode(v); err != nil {
		return err
	}
	if f.sync {
		return f.file.Sync()
	}
	return nil
}

// Close 關閉檔案
func (f *File) Close() error {
	return f.file.Close()
}

// ReadAll 從頭讀取所有資料
// callback 每次收到一筆原始 JSON，避免一次將所有資料載入記憶體
func (f *File) ReadAll(callback func(raw json.RawMessage) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, err := f.file.Seek(0, io.SeekStart); err != nil {
		return err
	}

	decoder := json.NewDecoder(f.file)
	for {
		var raw json.RawMessage
		if err := decoder.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if err := callback(raw); err != nil {
			return err
		}
	}
}
