//go:build !ddgidebug

package volume

const packCheckEnabled = false
