//go:build ddgidebug

package volume

// packCheckEnabled makes DescGPUPacked verify that every record survives pack, unpack and repack.
const packCheckEnabled = true
