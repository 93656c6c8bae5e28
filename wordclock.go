// Package wordclock implements a word clock daemon. The daemon talks to a
// microcontroller over a serial port: the controller drives the LEDs and
// reports button edges, the daemon decides what to show.
package wordclock

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"go.bug.st/serial"
	"golang.org/x/sync/errgroup"
	"libdb.so/wordclock/button"
	"libdb.so/wordclock/internal/led"
	"libdb.so/wordclock/ledserial"
)

// Port is the connection to the controller.
type Port interface {
	io.ReadWriteCloser
}

// Daemon is the main word clock daemon.
type Daemon struct {
	cfg    *Config
	logger *slog.Logger
	wc     *WordClock
	strip  *led.Strip
	port   Port
}

// NewDaemon creates a new word clock daemon. Preferences are loaded from and
// saved to store. clock may be nil to use the system clock.
func NewDaemon(cfg *Config, store PreferenceStore, clock button.Clock, logger *slog.Logger) (*Daemon, error) {
	if logger == nil {
		logger = slog.Default()
	}

	d := &Daemon{
		cfg:    cfg,
		logger: logger,
	}
	d.strip = led.NewStrip(cfg.Lights, d.writeFrame)

	wc, err := NewWordClock(cfg, d.strip, store, clock, logger)
	if err != nil {
		return nil, err
	}
	d.wc = wc

	return d, nil
}

// Run opens the serial port and runs the daemon. It blocks until the given
// context is canceled.
func (d *Daemon) Run(ctx context.Context) error {
	port, err := serial.Open(d.cfg.Device, &serial.Mode{
		BaudRate: d.cfg.Baud,
	})
	if err != nil {
		return errors.Wrap(err, "failed to open serial port")
	}
	defer port.Close()

	if err := port.SetReadTimeout(serial.NoTimeout); err != nil {
		return errors.Wrap(err, "failed to reset read timeout")
	}

	return d.RunPort(ctx, port)
}

// RunPort runs the daemon over an already open connection. The port is
// closed when the context is canceled.
func (d *Daemon) RunPort(ctx context.Context, port Port) error {
	d.port = port

	errg, ctx := errgroup.WithContext(ctx)
	errg.Go(func() error {
		<-ctx.Done()
		d.logger.Debug("closing serial port")
		if err := port.Close(); err != nil {
			return errors.Wrap(err, "failed to close serial port")
		}
		return ctx.Err()
	})
	errg.Go(func() error {
		return d.mainLoop(ctx)
	})
	errg.Go(func() error {
		return d.readPackets(ctx)
	})

	return errg.Wait()
}

func (d *Daemon) mainLoop(ctx context.Context) error {
	d.logger.Debug("sending initialize packet")
	if err := d.writePacket(ledserial.InitializePacket{
		NumLEDs: uint16(d.cfg.Lights),
	}); err != nil {
		return errors.Wrap(err, "failed to initialize LEDs")
	}

	ticker := time.NewTicker(time.Duration(d.cfg.PollInterval))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		if err := d.wc.Tick(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
	}
}

// readPackets reads packets from the controller. Button edges are handed
// straight to the buttons so that they are timed while the main loop is busy
// animating.
func (d *Daemon) readPackets(ctx context.Context) error {
	for ctx.Err() == nil {
		p, err := ledserial.ReadOutgoingPacket(d.port)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// A short read indicates a timeout. This is expected.
			// Ignore the error and try again.
			if errors.Is(err, io.EOF) {
				continue
			}
			if errors.Is(err, ledserial.ErrChecksumMismatch) {
				d.logger.Warn("dropping corrupted packet from controller")
				continue
			}
			return errors.Wrap(err, "failed to read packet")
		}

		if err := d.handlePacket(p); err != nil {
			return err
		}
	}

	return ctx.Err()
}

func (d *Daemon) handlePacket(p ledserial.OutgoingPacket) error {
	switch p := p.(type) {
	case ledserial.ButtonPacket:
		if !d.wc.HandleEdge(p.Button, p.Pressed) {
			d.logger.Warn(
				"received edge for unknown button",
				"button", p.Button)
		}

	case ledserial.AckPacket:
		d.logger.Debug(
			"received ack packet from controller",
			"acked_for", p.IncomingPacketType)

	case ledserial.ErrorPacket:
		d.logger.Warn(
			"received error packet from controller",
			"message", p.Message)

	case ledserial.PanicPacket:
		d.logger.Error("controller unrecoverably panicked")
		return errors.New("controller panicked")

	case ledserial.LogPacket:
		d.logger.Info(
			"received log packet from controller",
			"message", p.Message)

	default:
		return errors.Errorf("received unknown packet from controller: %s", p.Type())
	}

	return nil
}

func (d *Daemon) writeFrame(leds led.LEDs) error {
	return d.writePacket(ledserial.SetPacket{
		Pix: leds.AsPixels(),
	})
}

func (d *Daemon) writePacket(p ledserial.IncomingPacket) error {
	if d.port == nil {
		return errors.New("serial port not open")
	}

	if err := ledserial.WriteIncomingPacket(d.port, p); err != nil {
		return errors.Wrapf(err, "failed to write %s packet", p.Type())
	}

	return nil
}
