package runtime

import (
	"go.uber.org/zap"

	reactruntime "github.com/wippyai/react-runtime"
	"github.com/wippyai/react-runtime/errors"
)

// loadPrecompiled runs the configured precompiled scripts on a freshly
// resolved engine, in order, before any caller script executes.
func (e *Environment) loadPrecompiled(eng reactruntime.Engine) error {
	for _, path := range e.cfg.PrecompiledScriptPaths {
		src, err := e.readScript(path)
		if err != nil {
			return err
		}
		if err := eng.Run(src); err != nil {
			return errors.Translate(err)
		}
		e.logger.Debug("loaded precompiled script", zap.String("path", path))
	}
	return nil
}

// readScript fetches a script payload through the cache when one is
// configured, falling back to the filesystem on a miss.
func (e *Environment) readScript(path string) (string, error) {
	key := "script:" + path
	if e.cfg.Cache != nil {
		if data, ok := e.cfg.Cache.Get(key); ok {
			return string(data), nil
		}
	}

	data, err := e.cfg.FS.Read(path)
	if err != nil {
		return "", errors.Load("read precompiled script "+path, err)
	}
	if e.cfg.Cache != nil {
		e.cfg.Cache.Set(key, data)
		e.logger.Debug("cached precompiled script",
			zap.String("path", path),
			zap.String("hash", e.cfg.Hash.Compute(data)))
	}
	return string(data), nil
}
