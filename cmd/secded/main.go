// Command secded stores files as SECDED-protected blocks and restores them.
//
//	secded encode photo.jpg --out blocks/
//	secded corrupt blocks/photo.jpg_0.pak --bits 1
//	secded inspect blocks/photo.jpg_0.pak
//	secded decode blocks/photo.jpg.manifest --out restored.jpg
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1) //nolint:gocritic // stop already called
	}
}
