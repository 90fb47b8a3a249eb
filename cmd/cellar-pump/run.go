package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/sweeney/cellar-pump/internal/clock"
	"github.com/sweeney/cellar-pump/internal/config"
	"github.com/sweeney/cellar-pump/internal/logging"
	"github.com/sweeney/cellar-pump/internal/logic"
	"github.com/sweeney/cellar-pump/internal/mqtt"
	"github.com/sweeney/cellar-pump/internal/status"
	"github.com/sweeney/cellar-pump/internal/web"
)

func run(cfg config.Config) error {
	defer logging.Sync()

	hw, err := compose(cfg, os.Stdin, os.Stdout)
	if err != nil {
		return err
	}
	defer func() {
		if err := hw.Close(); err != nil {
			logging.Warn("release hardware", zap.Error(err))
		}
	}()

	ctrl, result, err := logic.NewController(hw.periph, cfg.Catalog(), cfg.ControllerTiming())
	if err != nil {
		logging.Warn("load preset selection, using default", zap.Error(err))
	}
	logPresetLoad(result, ctrl)

	var publisher mqtt.Publisher = mqtt.Nop{}
	var mqttStatus mqtt.ConnectionStatus = mqtt.Nop{}
	if cfg.MQTT.Broker != "" {
		p := mqtt.NewRealPublisher(cfg.MQTT.Broker, cfg.MQTT.ClientID)
		publisher, mqttStatus = p, p
	}
	defer publisher.Close()

	tracker := status.NewTracker(time.Now(), status.Config{
		PollMs:      cfg.Timing.Poll.Milliseconds(),
		DebounceMs:  cfg.Timing.Debounce.Milliseconds(),
		HeartbeatMs: cfg.MQTT.Heartbeat.Milliseconds(),
		Broker:      cfg.MQTT.Broker,
		HTTPAddr:    cfg.HTTP,
		Storage:     cfg.Storage,
		Simulated:   cfg.Simulate,
		Features:    status.Features(cfg.Features),
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	snap := tracker.Snapshot()
	if err := publisher.PublishSystem(mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}); err != nil {
		logging.Warn("publish startup event", zap.Error(err))
	}

	if cfg.HTTP != "" {
		srv := web.New(cfg.HTTP, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logging.Error("http server", zap.Error(err))
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			srv.Shutdown(ctx)
		}()
		logging.Info("http status server listening", zap.String("addr", cfg.HTTP))
	}

	logging.Info("started",
		zap.Duration("poll", cfg.Timing.Poll),
		zap.Bool("simulated", cfg.Simulate),
		zap.String("broker", cfg.MQTT.Broker),
		zap.Duration("heartbeat", cfg.MQTT.Heartbeat),
	)

	ticker := time.NewTicker(cfg.Timing.Poll)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	clk := clock.NewMonotonic(logic.Millis(cfg.ClockOffset))
	return runLoop(ctrl, clk, publisher, mqttStatus, tracker, cfg.MQTT.Heartbeat, time.Now, ticker.C, sigCh)
}

func logPresetLoad(result logic.LoadResult, ctrl *logic.Controller) {
	snap := ctrl.Snapshot(0)
	fields := []zap.Field{zap.Int("preset", snap.PresetIndex), zap.String("label", snap.Preset.Label)}
	switch result {
	case logic.LoadedSaved:
		logging.Info("restored preset", fields...)
	case logic.LoadedOutOfRange:
		logging.Info("saved preset out of range, using default", fields...)
	default:
		logging.Info("no saved preset, using default", fields...)
	}
}

// runLoop drives the controller once per tick until a signal arrives.
// Nothing in here waits on the network: publishing only queues.
func runLoop(ctrl *logic.Controller, clk logic.Clock, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, heartbeat time.Duration, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	events, err := ctrl.Start(clk.Now())
	report(publisher, now, events, err)

	for {
		select {
		case s := <-sig:
			logging.Info("shutting down", zap.Stringer("signal", s))
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			refresh(ctrl, clk.Now(), tracker, mqttStatus)
			snap := tracker.Snapshot()
			if err := publisher.PublishSystem(mqtt.SystemEvent{
				Timestamp:  now(),
				Event:      "SHUTDOWN",
				Reason:     signalName,
				Retained:   true,
				RawPayload: status.FormatStatusEvent(snap, "SHUTDOWN", signalName),
			}); err != nil {
				logging.Warn("publish shutdown event", zap.Error(err))
			}
			return nil

		case <-tick:
			ms := clk.Now()
			events, err := ctrl.Step(ms)
			report(publisher, now, events, err)

			if hb := ctrl.CheckHeartbeat(ms, heartbeat); hb != nil {
				logging.Info("heartbeat",
					zap.Duration("uptime", hb.Uptime),
					zap.Int("pump_on", hb.Counts.PumpOn),
					zap.Int("pump_off", hb.Counts.PumpOff),
					zap.Int("preset_changes", hb.Counts.PresetChanges),
				)
				if net := readNetworkInfo(); net != nil {
					tracker.SetNetwork(net)
				}
				refresh(ctrl, ms, tracker, mqttStatus)
				snap := tracker.Snapshot()
				if err := publisher.PublishSystem(mqtt.SystemEvent{
					Timestamp:  now(),
					Event:      "HEARTBEAT",
					RawPayload: status.FormatStatusEvent(snap, "HEARTBEAT", ""),
				}); err != nil {
					logging.Warn("publish heartbeat", zap.Error(err))
				}
			}

			refresh(ctrl, ms, tracker, mqttStatus)
		}
	}
}

func refresh(ctrl *logic.Controller, ms logic.Millis, tracker *status.Tracker, mqttStatus mqtt.ConnectionStatus) {
	tracker.Update(ctrl.Snapshot(ms))
	tracker.SetMQTTConnected(mqttStatus.IsConnected())
}

// report logs and publishes the events of one step and logs its errors.
func report(publisher mqtt.Publisher, now func() time.Time, events []logic.Event, err error) {
	for _, e := range events {
		logging.LogEvent(e)
		if err := publisher.Publish(now(), e); err != nil {
			logging.Warn("publish event", zap.String("event", string(e.Type)), zap.Error(err))
		}
	}
	logStepError(err)
}

// logStepError logs sensor failures at debug, since they are routine, and
// every other peripheral failure at warn.
func logStepError(err error) {
	if err == nil {
		return
	}
	errs := []error{err}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs = joined.Unwrap()
	}
	for _, e := range errs {
		var se *logic.SensorError
		if errors.As(e, &se) {
			logging.Debug("sensor read failed", zap.Error(se.Err))
			continue
		}
		logging.Warn("step", zap.Error(e))
	}
}
