package plugins

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dop251/goja"
	"github.com/pkg/errors"
	"github.com/shishobooks/shoka/pkg/metadata"
)

// DefaultTimeout bounds a single extract call.
const DefaultTimeout = 30 * time.Second

// Runtime wraps a goja VM for a single plugin. It loads manifest.json and
// executes main.js, which defines a `plugin` global with an extract
// function. goja VMs are not goroutine safe, so calls are serialised.
type Runtime struct {
	mu       sync.Mutex
	vm       *goja.Runtime
	manifest *Manifest
	dir      string
	extract  goja.Callable
}

// LoadPlugin creates a new Runtime from the given plugin directory.
func LoadPlugin(dir string) (*Runtime, error) {
	manifestData, err := os.ReadFile(filepath.Join(dir, "manifest.json"))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read manifest.json")
	}
	manifest, err := ParseManifest(manifestData)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse manifest")
	}

	mainJS, err := os.ReadFile(filepath.Join(dir, "main.js"))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read main.js")
	}

	vm := goja.New()

	if _, err := vm.RunScript(filepath.Join(dir, "main.js"), string(mainJS)); err != nil {
		return nil, errors.Wrap(err, "failed to execute main.js")
	}

	pluginVal := vm.Get("plugin")
	if isMissing(pluginVal) {
		return nil, errors.New("main.js did not define a 'plugin' global")
	}
	pluginObj := pluginVal.ToObject(vm)

	extract, ok := goja.AssertFunction(pluginObj.Get("extract"))
	if !ok {
		return nil, errors.New("plugin.extract is not a function")
	}

	return &Runtime{
		vm:       vm,
		manifest: manifest,
		dir:      dir,
		extract:  extract,
	}, nil
}

func (rt *Runtime) Manifest() *Manifest {
	return rt.manifest
}

// Extract calls plugin.extract(book, media) and maps its result to a patch.
// A result of undefined or null means the plugin has no opinion. The call
// is interrupted when ctx is done or after DefaultTimeout.
func (rt *Runtime) Extract(ctx context.Context, book, media map[string]interface{}) (*metadata.BookPatch, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	stop := make(chan struct{})
	exited := make(chan struct{})
	go func() {
		defer close(exited)
		select {
		case <-ctx.Done():
			rt.vm.Interrupt(ctx.Err())
		case <-stop:
		}
	}()
	defer func() {
		close(stop)
		<-exited
		rt.vm.ClearInterrupt()
	}()

	mediaVal := goja.Null()
	if media != nil {
		mediaVal = rt.vm.ToValue(media)
	}
	result, err := rt.extract(goja.Undefined(), rt.vm.ToValue(book), mediaVal)
	if err != nil {
		return nil, errors.Wrapf(err, "plugin %s: extract failed", rt.manifest.ID)
	}

	patch, err := parsePatch(rt.vm, result)
	if err != nil {
		return nil, errors.Wrapf(err, "plugin %s", rt.manifest.ID)
	}
	return patch, nil
}

func isMissing(val goja.Value) bool {
	return val == nil || goja.IsUndefined(val) || goja.IsNull(val)
}
