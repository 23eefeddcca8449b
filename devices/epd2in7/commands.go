package epd2in7

// See golang.org/x/tools/cmd/stringer
//
//go:generate stringer -type=command
type command byte

const (
	panelSetting                  command = 0x00
	powerSetting                  command = 0x01
	powerOff                      command = 0x02
	powerOffSequenceSetting       command = 0x03
	powerOn                       command = 0x04
	powerOnMeasure                command = 0x05
	boosterSoftStart              command = 0x06
	deepSleep                     command = 0x07
	dataStartTransmission1        command = 0x10
	dataStop                      command = 0x11
	displayRefresh                command = 0x12
	dataStartTransmission2        command = 0x13
	partialDataStartTransmission1 command = 0x14
	partialDataStartTransmission2 command = 0x15
	partialDisplayRefresh         command = 0x16
	lutForVCOM                    command = 0x20
	lutWhiteToWhite               command = 0x21
	lutBlackToWhite               command = 0x22
	lutWhiteToBlack               command = 0x23
	lutBlackToBlack               command = 0x24
	pllControl                    command = 0x30
	tempSensorCommand             command = 0x40
	tempSensorCalibration         command = 0x41
	tempSensorWrite               command = 0x42
	tempSensorRead                command = 0x43
	vcomAndDataIntervalSetting    command = 0x50
	lowPowerDetection             command = 0x51
	tconSetting                   command = 0x60
	tconResolution                command = 0x61
	sourceAndGateStartSetting     command = 0x62
	getStatus                     command = 0x71
	autoMeasureVCOM               command = 0x80
	vcomValue                     command = 0x81
	vcmDCSettingRegister          command = 0x82
	programMode                   command = 0xA0
	activeProgram                 command = 0xA1
	readOTPData                   command = 0xA2
	powerOptimization             command = 0xF8
)
