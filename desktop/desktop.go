// Package desktop manages a Docker container running a virtual desktop and
// exposes the primitives the agent dispatches against it: click, scroll,
// keypress, type, screenshot, exec.
//
// Port handling: container ports are fixed (5900 VNC, 8000 API, 2828
// Marionette, 2829 Socat); host ports start at the configured values. Before
// creating a container each host port is checked with a local bind and bumped
// past ports that are already busy; the check is advisory, so container
// startup still increments and retries when the daemon reports a conflict
// that appeared between the check and the actual startup.
package desktop

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/quarrylabs/deskdriver/internal/ports"
)

// Container-side ports are fixed by the desktop image.
const (
	containerVNCPort        = 5900
	containerAPIPort        = 8000
	containerMarionettePort = 2828
	containerSocatPort      = 2829
)

// maxStartRetries bounds the port-conflict retry loop.
const maxStartRetries = 10

// startupDelay gives container services a moment to come up.
const startupDelay = 2 * time.Second

const defaultImage = "quarrylabs/deskbox:latest"

// portAllocatedMarker is the Docker daemon's port-conflict error fragment.
const portAllocatedMarker = "port is already allocated"

// Options configures a Desktop. The zero value is usable: a generated
// container name, the default image, and the standard starting ports.
type Options struct {
	// Name is the container name; empty generates "deskbox-<uuid>".
	Name string
	// Image is the desktop container image.
	Image string
	// Starting host ports; incremented on conflict during Start.
	VNCPort        int
	APIPort        int
	MarionettePort int
	SocatPort      int
	// Display is the X display inside the container, default ":99".
	Display string
	Logger  *zap.Logger
}

// Desktop drives one desktop container. Primitives are synchronous: each
// returns only after the environment has carried it out.
type Desktop struct {
	name    string
	image   string
	display string

	vncPort        int
	apiPort        int
	marionettePort int
	socatPort      int

	run    commandRunner
	isFree func(port int) bool
	sleep  func(time.Duration)
	logger *zap.Logger
}

// New returns a Desktop with defaults applied. The container is not started
// until Start is called.
func New(opts Options) *Desktop {
	if opts.Name == "" {
		opts.Name = "deskbox-" + uuid.NewString()[:8]
	}
	if opts.Image == "" {
		opts.Image = defaultImage
	}
	if opts.VNCPort <= 0 {
		opts.VNCPort = 5900
	}
	if opts.APIPort <= 0 {
		opts.APIPort = 8000
	}
	if opts.MarionettePort <= 0 {
		opts.MarionettePort = 3838
	}
	if opts.SocatPort <= 0 {
		opts.SocatPort = 2828
	}
	if opts.Display == "" {
		opts.Display = ":99"
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Desktop{
		name:           opts.Name,
		image:          opts.Image,
		display:        opts.Display,
		vncPort:        opts.VNCPort,
		apiPort:        opts.APIPort,
		marionettePort: opts.MarionettePort,
		socatPort:      opts.SocatPort,
		run:            osRunner{},
		isFree:         ports.IsFree,
		sleep:          time.Sleep,
		logger:         opts.Logger.With(zap.String("component", "desktop"), zap.String("container", opts.Name)),
	}
}

// Name returns the container name.
func (d *Desktop) Name() string { return d.name }

// VNCPort returns the host VNC port actually in use after Start.
func (d *Desktop) VNCPort() int { return d.vncPort }

// APIPort returns the host API port actually in use after Start.
func (d *Desktop) APIPort() int { return d.apiPort }

// Start ensures the container is running, creating it if needed. Host port
// conflicts reported by the daemon are resolved by incrementing the
// conflicting port (or all ports when the conflict can't be attributed) and
// retrying, up to maxStartRetries times.
func (d *Desktop) Start(ctx context.Context) error {
	out, _, code, err := d.run.Run(ctx, "docker", "container", "inspect", "-f", "{{.State.Running}}", d.name)
	if err != nil {
		return fmt.Errorf("desktop: inspect container: %w", err)
	}
	if code == 0 {
		if strings.TrimSpace(out) == "true" {
			d.logger.Info("container already running")
		} else {
			d.logger.Info("container found stopped; starting")
			if _, stderr, code, err := d.run.Run(ctx, "docker", "start", d.name); err != nil {
				return fmt.Errorf("desktop: start container: %w", err)
			} else if code != 0 {
				return fmt.Errorf("desktop: start container: %s", strings.TrimSpace(stderr))
			}
		}
		d.sleep(startupDelay)
		return nil
	}

	// Not found: create a fresh container, pulling the image first.
	d.logger.Info("creating container", zap.String("image", d.image))
	if _, stderr, code, err := d.run.Run(ctx, "docker", "pull", d.image); err != nil {
		return fmt.Errorf("desktop: pull image: %w", err)
	} else if code != 0 {
		d.logger.Warn("image pull failed; attempting to start anyway", zap.String("stderr", strings.TrimSpace(stderr)))
	}

	if err := d.skipBusyPorts(); err != nil {
		return err
	}

	for retries := 0; retries < maxStartRetries; retries++ {
		_, stderr, code, err := d.run.Run(ctx, "docker", d.runArgs()...)
		if err != nil {
			return fmt.Errorf("desktop: run container: %w", err)
		}
		if code == 0 {
			d.logger.Info("container started",
				zap.Int("vnc_port", d.vncPort),
				zap.Int("api_port", d.apiPort),
				zap.Int("marionette_port", d.marionettePort),
				zap.Int("socat_port", d.socatPort),
			)
			d.sleep(startupDelay)
			return nil
		}
		if !strings.Contains(stderr, portAllocatedMarker) {
			return fmt.Errorf("desktop: run container: %s", strings.TrimSpace(stderr))
		}
		if err := d.resolvePortConflict(stderr); err != nil {
			return err
		}
		// A failed run may have left a named container behind.
		if _, _, code, err := d.run.Run(ctx, "docker", "rm", "-f", d.name); err == nil && code == 0 {
			d.logger.Info("removed leftover container")
		}
	}
	return fmt.Errorf("desktop: failed to start container after %d attempts due to port conflicts", maxStartRetries)
}

// skipBusyPorts bumps each host port past ones a local bind shows busy.
// The check is advisory; the run loop still handles conflicts the daemon
// reports later.
func (d *Desktop) skipBusyPorts() error {
	for _, p := range []struct {
		port  *int
		label string
	}{
		{&d.vncPort, "vnc"}, {&d.apiPort, "api"},
		{&d.marionettePort, "marionette"}, {&d.socatPort, "socat"},
	} {
		for attempts := 0; !d.isFree(*p.port); attempts++ {
			if attempts >= maxStartRetries {
				return fmt.Errorf("desktop: no free %s port at or above %d", p.label, *p.port-attempts)
			}
			old := *p.port
			next, err := ports.Next(old)
			if err != nil {
				return fmt.Errorf("desktop: %s: %w", p.label, err)
			}
			*p.port = next
			d.logger.Info("port busy; trying next",
				zap.String("port", p.label), zap.Int("old", old), zap.Int("new", next))
		}
	}
	return nil
}

func (d *Desktop) runArgs() []string {
	return []string{
		"run", "-d", "--name", d.name,
		"-p", fmt.Sprintf("%d:%d", d.vncPort, containerVNCPort),
		"-p", fmt.Sprintf("%d:%d", d.apiPort, containerAPIPort),
		"-p", fmt.Sprintf("%d:%d", d.marionettePort, containerMarionettePort),
		"-p", fmt.Sprintf("%d:%d", d.socatPort, containerSocatPort),
		d.image,
	}
}

// resolvePortConflict bumps the host port named in the daemon error, or all
// ports when the message doesn't identify one.
func (d *Desktop) resolvePortConflict(stderr string) error {
	bump := func(p *int, label string) error {
		old := *p
		next, err := ports.Next(old)
		if err != nil {
			return fmt.Errorf("desktop: %s: %w", label, err)
		}
		*p = next
		d.logger.Info("port in use; trying next",
			zap.String("port", label), zap.Int("old", old), zap.Int("new", next))
		return nil
	}

	switch {
	case strings.Contains(stderr, fmt.Sprintf("0.0.0.0:%d", d.vncPort)):
		return bump(&d.vncPort, "vnc")
	case strings.Contains(stderr, fmt.Sprintf("0.0.0.0:%d", d.apiPort)):
		return bump(&d.apiPort, "api")
	case strings.Contains(stderr, fmt.Sprintf("0.0.0.0:%d", d.marionettePort)):
		return bump(&d.marionettePort, "marionette")
	case strings.Contains(stderr, fmt.Sprintf("0.0.0.0:%d", d.socatPort)):
		return bump(&d.socatPort, "socat")
	default:
		for _, p := range []struct {
			port  *int
			label string
		}{
			{&d.vncPort, "vnc"}, {&d.apiPort, "api"},
			{&d.marionettePort, "marionette"}, {&d.socatPort, "socat"},
		} {
			if err := bump(p.port, p.label); err != nil {
				return err
			}
		}
		return nil
	}
}

// Stop stops and removes the container. A missing container is not an error.
func (d *Desktop) Stop(ctx context.Context) error {
	_, stderr, code, err := d.run.Run(ctx, "docker", "stop", d.name)
	if err != nil {
		return fmt.Errorf("desktop: stop container: %w", err)
	}
	if code != 0 {
		if strings.Contains(stderr, "No such container") {
			d.logger.Info("container not found", zap.String("stderr", strings.TrimSpace(stderr)))
			return nil
		}
		return fmt.Errorf("desktop: stop container: %s", strings.TrimSpace(stderr))
	}
	if _, stderr, code, err := d.run.Run(ctx, "docker", "rm", d.name); err != nil {
		return fmt.Errorf("desktop: remove container: %w", err)
	} else if code != 0 {
		return fmt.Errorf("desktop: remove container: %s", strings.TrimSpace(stderr))
	}
	d.logger.Info("container stopped and removed")
	return nil
}
