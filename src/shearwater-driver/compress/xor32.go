package compress

// windowSize is the distance each byte is XORed against, matching the
// device's 32-byte unsliding window (spec §4.3, GLOSSARY "XOR-32").
const windowSize = 32

// XOR32 deobfuscates output in place: for i >= windowSize,
// output[i] ^= output[i-windowSize]. The first windowSize bytes are
// unchanged. Each byte is XORed against its already-updated predecessor, so
// applying XOR32 twice restores the original only for streams of at most
// 2*windowSize bytes; longer streams are not restored.
func XOR32(output []byte) {
	for i := windowSize; i < len(output); i++ {
		output[i] ^= output[i-windowSize]
	}
}
