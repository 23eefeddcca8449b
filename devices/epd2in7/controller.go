package epd2in7

import (
	"time"

	"periph.io/x/periph/conn/gpio"
)

const (
	resetHold  = 200 * time.Millisecond
	busyPoll   = 10 * time.Millisecond
	busySettle = 100 * time.Millisecond
)

type controller interface {
	sendCommand(command)
	sendData([]byte)
	waitUntilIdle()
}

// errorHandler drives a Bus and keeps the first error; every call after a
// failure is a no-op.
type errorHandler struct {
	bus     Bus
	timeout time.Duration
	err     error
}

func (eh *errorHandler) setCommandMode(cmd bool) {
	if eh.err != nil {
		return
	}
	eh.err = eh.bus.SetCommandMode(cmd)
}

func (eh *errorHandler) write(p []byte) {
	if eh.err != nil {
		return
	}
	eh.err = eh.bus.Write(p)
}

func (eh *errorHandler) rstOut(l gpio.Level) {
	if eh.err != nil {
		return
	}
	eh.err = eh.bus.SetReset(l)
}

func (eh *errorHandler) sendCommand(cmd command) {
	eh.setCommandMode(true)
	eh.write([]byte{byte(cmd)})
}

func (eh *errorHandler) sendData(data []byte) {
	eh.setCommandMode(false)
	eh.write(data)
}

// reset returns the controller to its power-on defaults.
func (eh *errorHandler) reset() {
	eh.rstOut(gpio.High)
	eh.bus.Sleep(resetHold)
	eh.rstOut(gpio.Low)
	eh.bus.Sleep(resetHold)
	eh.rstOut(gpio.High)
	eh.bus.Sleep(resetHold)
}

// waitUntilIdle polls the busy line, asking the controller for its status on
// every round. The timeout counts from entry, status writes included. Without
// a timeout it waits forever.
//
// TODO: verify on hardware whether a plain level poll is enough and drop the
// status request if so.
func (eh *errorHandler) waitUntilIdle() {
	if eh.err != nil {
		return
	}
	start := eh.bus.Now()
	for eh.bus.Busy() {
		if eh.timeout > 0 && eh.bus.Now().Sub(start) >= eh.timeout {
			eh.reset()
			if eh.err == nil {
				eh.err = ErrControllerUnresponsive
			}
			return
		}
		eh.sendCommand(getStatus)
		if eh.err != nil {
			return
		}
		eh.bus.Sleep(busyPoll)
	}
	eh.bus.Sleep(busySettle)
}

// initDisplay programs power, booster and panel registers, powers the panel on
// and loads the waveforms. The order is required by the controller.
func initDisplay(ctrl controller, cal *calibration) {
	ctrl.sendCommand(powerSetting)
	ctrl.sendData(cal.power[:])

	ctrl.sendCommand(boosterSoftStart)
	ctrl.sendData(cal.booster[:])

	for _, r := range cal.powerOptimizations {
		ctrl.sendCommand(powerOptimization)
		ctrl.sendData(r[:])
	}

	ctrl.sendCommand(partialDisplayRefresh)
	ctrl.sendData([]byte{cal.partialRefresh})

	ctrl.sendCommand(powerOn)
	ctrl.waitUntilIdle()

	ctrl.sendCommand(panelSetting)
	ctrl.sendData([]byte{cal.panel})

	ctrl.sendCommand(pllControl)
	ctrl.sendData([]byte{cal.pll})

	ctrl.sendCommand(vcmDCSettingRegister)
	ctrl.sendData([]byte{cal.vcmDC})

	loadLookupTables(ctrl, &cal.waveforms)
}

func loadLookupTables(ctrl controller, w *Waveforms) {
	for _, lut := range []struct {
		cmd  command
		data []byte
	}{
		{lutForVCOM, w.VCOM[:]},
		{lutWhiteToWhite, w.WW[:]},
		{lutBlackToWhite, w.BW[:]},
		{lutWhiteToBlack, w.WB[:]},
		{lutBlackToBlack, w.BB[:]},
	} {
		ctrl.sendCommand(lut.cmd)
		ctrl.sendData(lut.data)
	}
}

// writeFrame uploads the reference (old) and the new plane.
func writeFrame(ctrl controller, old, next []byte) {
	ctrl.sendCommand(dataStartTransmission1)
	ctrl.sendData(old)

	ctrl.sendCommand(dataStartTransmission2)
	ctrl.sendData(next)
}

func refresh(ctrl controller) {
	ctrl.sendCommand(displayRefresh)
	ctrl.waitUntilIdle()
}

// powerDown puts the controller in deep sleep. The busy line is not reliable
// here, so there is no wait.
func powerDown(ctrl controller, cal *calibration) {
	ctrl.sendCommand(vcomAndDataIntervalSetting)
	ctrl.sendData([]byte{cal.sleepVCOMInterval})

	ctrl.sendCommand(powerOff)

	ctrl.sendCommand(deepSleep)
	ctrl.sendData([]byte{cal.deepSleepCheck})
}
