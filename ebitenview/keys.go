// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package ebitenview

import "github.com/hajimehoshi/ebiten/v2"

// vkCodes holds the keys that do not sit in a contiguous run.
var vkCodes = map[ebiten.Key]int32{
	ebiten.KeyBackspace:    0x08,
	ebiten.KeyTab:          0x09,
	ebiten.KeyEnter:        0x0D,
	ebiten.KeyNumpadEnter:  0x0D,
	ebiten.KeyPause:        0x13,
	ebiten.KeyCapsLock:     0x14,
	ebiten.KeyEscape:       0x1B,
	ebiten.KeySpace:        0x20,
	ebiten.KeyPageUp:       0x21,
	ebiten.KeyPageDown:     0x22,
	ebiten.KeyEnd:          0x23,
	ebiten.KeyHome:         0x24,
	ebiten.KeyArrowLeft:    0x25,
	ebiten.KeyArrowUp:      0x26,
	ebiten.KeyArrowRight:   0x27,
	ebiten.KeyArrowDown:    0x28,
	ebiten.KeyPrintScreen:  0x2C,
	ebiten.KeyInsert:       0x2D,
	ebiten.KeyDelete:       0x2E,
	ebiten.KeyContextMenu:  0x5D,
	ebiten.KeyNumLock:      0x90,
	ebiten.KeyScrollLock:   0x91,
	ebiten.KeyShift:        0x10,
	ebiten.KeyShiftLeft:    0x10,
	ebiten.KeyShiftRight:   0x10,
	ebiten.KeyControl:      0x11,
	ebiten.KeyControlLeft:  0x11,
	ebiten.KeyControlRight: 0x11,
	ebiten.KeyAlt:          0x12,
	ebiten.KeyAltLeft:      0x12,
	ebiten.KeyAltRight:     0x12,
	ebiten.KeyMeta:         0x5B,
	ebiten.KeyMetaLeft:     0x5B,
	ebiten.KeyMetaRight:    0x5B,

	ebiten.KeyNumpadMultiply: 0x6A,
	ebiten.KeyNumpadAdd:      0x6B,
	ebiten.KeyNumpadSubtract: 0x6D,
	ebiten.KeyNumpadDecimal:  0x6E,
	ebiten.KeyNumpadDivide:   0x6F,
	ebiten.KeyNumpadEqual:    0xBB,

	// VK_OEM_*
	ebiten.KeySemicolon:     0xBA,
	ebiten.KeyEqual:         0xBB,
	ebiten.KeyComma:         0xBC,
	ebiten.KeyMinus:         0xBD,
	ebiten.KeyPeriod:        0xBE,
	ebiten.KeySlash:         0xBF,
	ebiten.KeyBackquote:     0xC0,
	ebiten.KeyBracketLeft:   0xDB,
	ebiten.KeyBackslash:     0xDC,
	ebiten.KeyIntlBackslash: 0xDC,
	ebiten.KeyBracketRight:  0xDD,
	ebiten.KeyQuote:         0xDE,
}

// fKeys lists F1..F12; their codes are consecutive from 0x70.
var fKeys = [...]ebiten.Key{
	ebiten.KeyF1, ebiten.KeyF2, ebiten.KeyF3, ebiten.KeyF4,
	ebiten.KeyF5, ebiten.KeyF6, ebiten.KeyF7, ebiten.KeyF8,
	ebiten.KeyF9, ebiten.KeyF10, ebiten.KeyF11, ebiten.KeyF12,
}

// KeyToVK maps an Ebiten key to its Windows virtual-key code, the key code
// carried by offscreen.InputEvent. Unmapped keys return 0.
func KeyToVK(key ebiten.Key) int32 {
	if vk, ok := vkCodes[key]; ok {
		return vk
	}
	for i, f := range fKeys {
		if key == f {
			return 0x70 + int32(i)
		}
	}
	switch {
	case key >= ebiten.KeyDigit0 && key <= ebiten.KeyDigit9:
		return 0x30 + int32(key-ebiten.KeyDigit0)
	case key >= ebiten.KeyA && key <= ebiten.KeyZ:
		return 0x41 + int32(key-ebiten.KeyA)
	case key >= ebiten.KeyNumpad0 && key <= ebiten.KeyNumpad9:
		return 0x60 + int32(key-ebiten.KeyNumpad0)
	}
	return 0
}
