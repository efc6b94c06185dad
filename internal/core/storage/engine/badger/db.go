// Package badger 提供基于 BadgerDB 的存储引擎实现
//
// Path 为空时以内存模式打开，适合模拟网络；
// 指定 Path 时数据持久化到该目录。
//
// # 使用示例
//
//	db, err := badger.New("")
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Put([]byte("key"), []byte("value")); err != nil {
//	    return err
//	}
//	value, err := db.Get([]byte("key"))
package badger

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/dgraph-io/badger/v4"

	"github.com/dep2p/go-kadcore/internal/core/storage/engine"
	"github.com/dep2p/go-kadcore/pkg/lib/log"
)

var logger = log.Logger("storage/badger")

// Engine BadgerDB 存储引擎
type Engine struct {
	db     *badger.DB
	path   string
	closed atomic.Bool
}

var _ engine.Engine = (*Engine)(nil)

// New 创建 BadgerDB 存储引擎
//
// path 为空时使用内存模式。
func New(path string) (*Engine, error) {
	db, err := badger.Open(buildBadgerOptions(path))
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	logger.Debug("BadgerDB 已打开", "path", path, "inMemory", path == "")
	return &Engine{db: db, path: path}, nil
}

// buildBadgerOptions 根据路径构建 BadgerDB 选项
func buildBadgerOptions(path string) badger.Options {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.
			WithInMemory(true).
			WithMemTableSize(8 << 20).
			WithBlockCacheSize(8 << 20)
	}
	return opts.WithLogger(&badgerLogger{})
}

// badgerLogger 将 badger 的日志接口适配到组件 logger
type badgerLogger struct{}

func (badgerLogger) Errorf(format string, args ...interface{}) {
	logger.Error(fmt.Sprintf(format, args...))
}

func (badgerLogger) Warningf(format string, args ...interface{}) {
	logger.Warn(fmt.Sprintf(format, args...))
}

func (badgerLogger) Infof(format string, args ...interface{}) {
	logger.Debug(fmt.Sprintf(format, args...))
}

func (badgerLogger) Debugf(format string, args ...interface{}) {
	logger.Debug(fmt.Sprintf(format, args...))
}

// Get 获取指定键的值
func (e *Engine) Get(key []byte) ([]byte, error) {
	if err := e.check(key); err != nil {
		return nil, err
	}

	var value []byte
	err := e.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, engine.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if value == nil {
		value = []byte{}
	}
	return value, nil
}

// Put 设置键值对
func (e *Engine) Put(key, value []byte) error {
	if err := e.check(key); err != nil {
		return err
	}
	return e.db.Update(func(txn *badger.Txn) error {
		// badger 在事务提交前持有切片引用
		return txn.Set(append([]byte{}, key...), append([]byte{}, value...))
	})
}

// Has 检查键是否存在
func (e *Engine) Has(key []byte) (bool, error) {
	if err := e.check(key); err != nil {
		return false, err
	}
	err := e.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Delete 删除指定键
func (e *Engine) Delete(key []byte) error {
	if err := e.check(key); err != nil {
		return err
	}
	return e.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

// Close 关闭引擎
func (e *Engine) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return engine.ErrClosed
	}
	logger.Debug("关闭 BadgerDB", "path", e.path)
	return e.db.Close()
}

func (e *Engine) check(key []byte) error {
	if e.closed.Load() {
		return engine.ErrClosed
	}
	if len(key) == 0 {
		return engine.ErrEmptyKey
	}
	return nil
}
