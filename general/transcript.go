package general

import (
	"encoding/binary"

	"github.com/mimoo/StrobeGo/strobe"
)

const (
	secLevel    = 128
	merlinLabel = "Merlin v1.0"
	domainSep   = "dom-sep"
)

// Transcript is a Merlin transcript: a STROBE duplex that absorbs labelled
// messages and squeezes challenges bound to everything absorbed so far.
type Transcript struct {
	strobe strobe.Strobe
	label  string
}

// NewTranscript starts a transcript separated by the given domain label.
func NewTranscript(label string) *Transcript {
	tr := &Transcript{
		strobe: strobe.InitStrobe(merlinLabel, secLevel),
		label:  label,
	}
	tr.AppendMessage([]byte(domainSep), []byte(label))
	return tr
}

// AppendMessage absorbs message under label.
func (tr *Transcript) AppendMessage(label, message []byte) {
	tr.strobe.AD(true, withLength(label, len(message)))
	tr.strobe.AD(false, message)
}

// AppendUint64 absorbs an integer encoded as 8 little-endian bytes.
func (tr *Transcript) AppendUint64(label []byte, x uint64) {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, x)
	tr.AppendMessage(label, buf)
}

// GetChallengeBytes squeezes outputLen bytes out of the transcript.
func (tr *Transcript) GetChallengeBytes(label []byte, outputLen int) []byte {
	tr.strobe.AD(true, withLength(label, outputLen))
	return tr.strobe.PRF(outputLen)
}

// Clone forks the transcript. Both copies evolve independently afterwards.
func (tr *Transcript) Clone() *Transcript {
	return &Transcript{
		strobe: *tr.strobe.Clone(),
		label:  tr.label,
	}
}

func withLength(label []byte, n int) []byte {
	size := make([]byte, 4)
	binary.LittleEndian.PutUint32(size, uint32(n))

	out := make([]byte, 0, len(label)+4)
	out = append(out, label...)
	return append(out, size...)
}
