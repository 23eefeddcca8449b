package epd2in7

// Waveforms holds the five lookup tables that define the voltage sequence
// applied to a pixel for each state transition.
type Waveforms struct {
	VCOM [44]byte
	// WW is white to white.
	WW [42]byte
	// BW is black to white.
	BW [42]byte
	// WB is white to black.
	WB [42]byte
	// BB is black to black.
	BB [42]byte
}

// register is a {register, value} pair written through powerOptimization.
type register [2]byte

// calibration groups the controller specific constants of the init and sleep
// sequences. The values come from the panel vendor and must be sent
// unchanged; other revisions of the controller need their own table.
type calibration struct {
	// VDS_EN VDG_EN, VCOM_HV VGHL_LV, VDH, VDL, VDHR.
	power              [5]byte
	booster            [3]byte
	powerOptimizations [7]register
	// Partial refresh disabled.
	partialRefresh byte
	// KW-BF KWR-AF BWROTP-0F.
	panel byte
	// 3A 100Hz, 29 150Hz, 39 200Hz, 31 171Hz.
	pll               byte
	vcmDC             byte
	sleepVCOMInterval byte
	deepSleepCheck    byte
	waveforms         Waveforms
}

var il91874 = calibration{
	power:   [5]byte{0x03, 0x00, 0x2B, 0x2B, 0x09},
	booster: [3]byte{0x07, 0x07, 0x17},
	powerOptimizations: [7]register{
		{0x60, 0xA5},
		{0x89, 0xA5},
		{0x90, 0x00},
		{0x93, 0x2A},
		{0xA0, 0xA5},
		{0xA1, 0x00},
		{0x73, 0x41},
	},
	partialRefresh:    0x00,
	panel:             0xAF,
	pll:               0x3A,
	vcmDC:             0x12,
	sleepVCOMInterval: 0xF7,
	deepSleepCheck:    0xA5,
	waveforms: Waveforms{
		VCOM: [44]byte{
			0x00, 0x00,
			0x00, 0x08, 0x00, 0x00, 0x00, 0x02,
			0x60, 0x28, 0x28, 0x00, 0x00, 0x01,
			0x00, 0x14, 0x00, 0x00, 0x00, 0x01,
			0x00, 0x12, 0x12, 0x00, 0x00, 0x01,
			0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
			0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
			0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		},
		WW: [42]byte{
			0x40, 0x08, 0x00, 0x00, 0x00, 0x02,
			0x90, 0x28, 0x28, 0x00, 0x00, 0x01,
			0x40, 0x14, 0x00, 0x00, 0x00, 0x01,
			0xA0, 0x12, 0x12, 0x00, 0x00, 0x01,
			0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
			0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
			0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		},
		BW: [42]byte{
			0x40, 0x08, 0x00, 0x00, 0x00, 0x02,
			0x90, 0x28, 0x28, 0x00, 0x00, 0x01,
			0x40, 0x14, 0x00, 0x00, 0x00, 0x01,
			0xA0, 0x12, 0x12, 0x00, 0x00, 0x01,
			0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
			0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
			0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		},
		WB: [42]byte{
			0x80, 0x08, 0x00, 0x00, 0x00, 0x02,
			0x90, 0x28, 0x28, 0x00, 0x00, 0x01,
			0x80, 0x14, 0x00, 0x00, 0x00, 0x01,
			0x50, 0x12, 0x12, 0x00, 0x00, 0x01,
			0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
			0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
			0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		},
		BB: [42]byte{
			0x80, 0x08, 0x00, 0x00, 0x00, 0x02,
			0x90, 0x28, 0x28, 0x00, 0x00, 0x01,
			0x80, 0x14, 0x00, 0x00, 0x00, 0x01,
			0x50, 0x12, 0x12, 0x00, 0x00, 0x01,
			0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
			0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
			0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		},
	},
}
