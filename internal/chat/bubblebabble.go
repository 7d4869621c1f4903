package chat

// bubbleBabble implements the A. Huima "bubble babble" binary-to-text
// encoding (used historically for SSH fingerprints): it has no natural
// third-party Go library in the retrieved corpus, so it is hand-rolled
// here, used only to turn a SHA-1 digest into a pronounceable,
// deterministic pseudonym.
func bubbleBabble(data []byte) string {
	const vowels = "aeiouy"
	const consonants = "bcdfghklmnprstvzx"

	seed := 1
	rounds := len(data)/2 + 1

	out := make([]byte, 0, rounds*6+2)
	out = append(out, 'x')

	for i := 0; i < rounds; i++ {
		if i+1 < rounds || len(data)%2 != 0 {
			b0 := int(data[2*i])
			idx0 := (((b0 >> 6) & 3) + seed) % 6
			idx1 := (b0 >> 2) & 15
			idx2 := ((b0 & 3) + seed/6) % 6

			out = append(out, vowels[idx0], consonants[idx1], vowels[idx2])

			if i+1 < rounds {
				b1 := int(data[2*i+1])
				idx3 := (b1 >> 4) & 15
				idx4 := b1 & 15

				out = append(out, consonants[idx3], '-', consonants[idx4])
				seed = (seed*5 + idx0*7 + idx1) % 36
			}
		} else {
			idx0 := seed % 6
			idx2 := seed / 6
			out = append(out, vowels[idx0], consonants[16], vowels[idx2])
		}
	}

	out = append(out, 'x')
	return string(out)
}
