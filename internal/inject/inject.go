package inject

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/isotopp/falimage/internal/config"
	"github.com/isotopp/falimage/internal/download"
	"github.com/isotopp/falimage/internal/exif"
	"github.com/isotopp/falimage/internal/fal"
	"github.com/isotopp/falimage/internal/log"
	"github.com/isotopp/falimage/internal/request"
	"github.com/samber/do"
)

const (
	connectTimeout = 5 * time.Second
	readTimeout    = 60 * time.Second
)

func Setup(ctx context.Context) *do.Injector {
	log := log.FromContextOrDiscard(ctx)

	injector := do.NewWithOpts(&do.InjectorOpts{
		Logf: func(format string, args ...any) {
			log.Debug(fmt.Sprintf(format, args...))
		},
	})

	do.ProvideValue[config.Config](injector, config.Load())

	// The generation call deliberately has no client timeout; a bounded ctx
	// is the only way to cut it short. Downloads get the fixed connect/read
	// timeouts.
	do.Provide[*http.Client](injector, func(i *do.Injector) (*http.Client, error) {
		return &http.Client{}, nil
	})
	do.ProvideNamed[*http.Client](injector, "download", func(i *do.Injector) (*http.Client, error) {
		return &http.Client{
			Transport: &http.Transport{
				Proxy:       http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{Timeout: connectTimeout}).DialContext,
			},
			Timeout: readTimeout,
		}, nil
	})

	do.Provide[fal.Invoker](injector, func(i *do.Injector) (fal.Invoker, error) {
		return &fal.Client{
			Client: do.MustInvoke[*http.Client](i),
			Key:    do.MustInvoke[config.Config](i).FalKey,
		}, nil
	})
	do.Provide[*request.Dispatcher](injector, request.NewDispatcher)

	do.Provide[*exif.Tagger](injector, func(i *do.Injector) (*exif.Tagger, error) {
		return &exif.Tagger{Writer: exif.ExiftoolWriter{}, Out: os.Stdout}, nil
	})
	do.Provide[*download.Downloader](injector, func(i *do.Injector) (*download.Downloader, error) {
		return &download.Downloader{
			Client: do.MustInvokeNamed[*http.Client](i, "download"),
			Tagger: do.MustInvoke[*exif.Tagger](i),
			Out:    os.Stdout,
		}, nil
	})

	return injector
}
