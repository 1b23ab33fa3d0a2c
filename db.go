package seqdb

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

const (
	DefaultDir     = "db"
	defaultTimeout = 10 * time.Second
	fileExt        = ".db"
)

type Engine int

const (
	// EngineBolt keeps each store in a bbolt file under Options.Dir.
	EngineBolt Engine = iota
	// EngineMemory keeps stores in process memory; they vanish when closed.
	EngineMemory
)

func (e Engine) String() string {
	switch e {
	case EngineBolt:
		return "bolt"
	case EngineMemory:
		return "memory"
	default:
		return fmt.Sprintf("Engine(%d)", int(e))
	}
}

func ParseEngine(s string) (Engine, error) {
	switch s {
	case "", "bolt":
		return EngineBolt, nil
	case "memory", "mem":
		return EngineMemory, nil
	default:
		return 0, fmt.Errorf("unknown engine %q", s)
	}
}

type Options struct {
	// Dir holds one file per store. Defaults to DefaultDir.
	Dir    string
	Engine Engine

	// Encoding of newly written records. Existing records keep theirs.
	Encoding Encoding

	Logger  *slog.Logger
	Verbose bool

	// IsTesting trades durability for speed.
	IsTesting bool
	MmapSize  int

	// Timeout bounds waiting for the file lock held by another process.
	Timeout time.Duration
}

func (opt Options) withDefaults() Options {
	if opt.Dir == "" {
		opt.Dir = DefaultDir
	}
	if opt.Logger == nil {
		opt.Logger = slog.Default()
	}
	if opt.Timeout == 0 {
		opt.Timeout = defaultTimeout
	}
	return opt
}

func (opt *Options) storePath(name string) string {
	return filepath.Join(opt.Dir, name+fileExt)
}

func openStorage(path string, opt *Options) (storage, error) {
	if opt.Engine == EngineMemory {
		return newMemStorage(), nil
	}

	bopt := *bbolt.DefaultOptions
	bopt.Timeout = opt.Timeout
	if opt.IsTesting {
		bopt.NoSync = true
		bopt.NoFreelistSync = true
		bopt.InitialMmapSize = 1024 * 1024 * 5
	} else {
		bopt.InitialMmapSize = 1024 * 1024 * 64
		bopt.FreelistType = bbolt.FreelistMapType
	}
	if opt.MmapSize != 0 {
		bopt.InitialMmapSize = opt.MmapSize
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	bdb, err := bbolt.Open(path, 0o666, &bopt)
	if err != nil {
		return nil, err
	}
	return newBoltStorage(bdb), nil
}
