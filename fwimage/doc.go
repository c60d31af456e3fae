// Package fwimage loads firmware images for flash programming. Intel HEX
// files carry their own load addresses; raw binary files are placed at a
// caller-supplied base address. Either way the result is a list of
// address-ordered segments ready to hand to the flash driver.
package fwimage
