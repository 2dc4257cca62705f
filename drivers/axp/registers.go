package axp

// Register map shared by the AXP173/AXP192/AXP202 family. Addresses that only
// exist on one part carry the chip in their name.
const (
	// 7-bit I2C addresses.
	AddressAXP202 = 0x35
	AddressAXP192 = 0x34
	AddressAXP173 = 0x34

	// Identity values. The AXP173 has no identity register; 0xAD is reported
	// after the status plausibility check passes.
	ChipIDAXP202 = 0x41
	ChipIDAXP192 = 0x03
	ChipIDAXP173 = 0xAD

	// Status
	regStatus       = 0x00 // R: input power status
	regModeChgState = 0x01 // R: power mode / charge status
	regICType       = 0x03 // R: chip identity (AXP192/AXP202)

	// Output switches
	regExtenDC2Ctl = 0x10 // R/W: AXP173 EXTEN (bit2) and DC-DC2 (bit0)
	regOutputCtl   = 0x12 // R/W: rail enable bundle

	// Rail voltages
	regDC2Out   = 0x23 // R/W: DC-DC2, 700..2275mV/25mV, bits 5:0
	regDC1Out   = 0x26 // R/W: AXP173/AXP192 DC-DC1, bits 6:0
	regDC3Out   = 0x27 // R/W: DC-DC3 (AXP192/AXP202), LDO4 (AXP173)
	regLDO2x    = 0x28 // R/W: LDO2 in 7:4; LDO3 (AXP1xx) or LDO4 (AXP202) in 3:0
	regLDO3Out  = 0x29 // R/W: AXP202 LDO3, bit7 selects DC-in passthrough
	regGPIO0Vol = 0x91 // R/W: LDOIO0 / LDO5 voltage

	// Power path and button
	regIPSSet  = 0x30 // R/W: VBUS-IPSOUT path, current limit bits 1:0
	regOffCtl  = 0x32 // R/W: shutdown, battery detect, CHGLED
	regCharge1 = 0x33 // R/W: charge enable, target voltage, current
	regPOKSet  = 0x36 // R/W: PEK startup/long press/shutdown timing

	// Interrupt banks.
	regIntEn1     = 0x40
	regIntEn2     = 0x41
	regIntEn3     = 0x42
	regIntEn4     = 0x43
	regIntEn5202  = 0x44 // AXP202
	regIntEn5192  = 0x4A // AXP173/AXP192
	regIntSts1192 = 0x44 // AXP173/AXP192 status bank 0x44..0x47, 0x4D
	regIntSts2192 = 0x45
	regIntSts3192 = 0x46
	regIntSts4192 = 0x47
	regIntSts5192 = 0x4D
	regIntSts1202 = 0x48 // AXP202 status bank 0x48..0x4C
	regIntSts2202 = 0x49
	regIntSts3202 = 0x4A
	regIntSts4202 = 0x4B
	regIntSts5202 = 0x4C

	// ADC data (high byte first, low nibble or low five bits next).
	regAcinVolH     = 0x56
	regAcinCurH     = 0x58
	regVBusVolH     = 0x5A
	regVBusCurH     = 0x5C
	regInternalTmpH = 0x5E
	regTSVolH       = 0x62
	regGPIO0VolH    = 0x64
	regGPIO1VolH    = 0x66
	regBatPowerH    = 0x70 // 24-bit, 0x70..0x72
	regBatVolH      = 0x78
	regBatChgCurH   = 0x7A
	regBatDchgCurH  = 0x7C
	regAPSVolH      = 0x7E

	// ADC control
	regADCEn1   = 0x82 // R/W
	regADCEn2   = 0x83 // R/W
	regADCSpeed = 0x84 // R/W: rate 7:6, TS current 5:4, TS function 2, TS mode 1:0

	regTimerCtl = 0x8A // R/W: minutes 6:0, bit7 timeout flag (write 1 to clear)

	// GPIO
	regGPIO0Ctl   = 0x90
	regGPIO1Ctl   = 0x92
	regGPIO2Ctl   = 0x93
	regGPIO012Sig = 0x94 // inputs 6:4, outputs 2:0
	regGPIO3Ctl   = 0x95 // AXP202 GPIO3, AXP192 GPIO3/4
	regGPIO34Sig  = 0x96 // AXP192 GPIO3/4 inputs 5:4, outputs 1:0

	// Coulomb counter
	regCoulombChg  = 0xB0 // 32-bit BE, 0xB0..0xB3
	regCoulombDchg = 0xB4 // 32-bit BE, 0xB4..0xB7
	regCoulombCtl  = 0xB8 // R/W: enable 7, pause 6, clear 5
	regBattPercent = 0xB9 // R: AXP202 fuel gauge, bit7 = invalid
)

// Status bits.
const (
	statusACINPresent = 7 // 0x00
	statusVBusPresent = 5 // 0x00
	modeCharging      = 6 // 0x01
	modeBattery       = 5 // 0x01
)

// Coulomb control values.
const (
	coulombEnable  = 0x80
	coulombDisable = 0x00
	coulombStop    = 0xC0
	coulombClear   = 0xA0
)
