package mzml

import (
	"bytes"
	"compress/zlib"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math"
	"strings"
	"testing"
)

func encode64(vals []float64) []byte {
	buf := make([]byte, 8*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	return buf
}

func encode32(vals []float64) []byte {
	buf := make([]byte, 4*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(float32(v)))
	}
	return buf
}

func deflate(t testing.TB, data []byte) []byte {
	t.Helper()
	var b bytes.Buffer
	w := zlib.NewWriter(&b)
	if _, err := w.Write(data); err != nil {
		t.Fatalf("zlib write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("zlib close: %v", err)
	}
	return b.Bytes()
}

func dataArray(typeCV, kindCV string, zlibCompressed bool, data []byte) string {
	comp := ``
	if zlibCompressed {
		comp = `<cvParam accession="MS:1000574" name="zlib compression"/>`
	}
	enc := base64.StdEncoding.EncodeToString(data)
	return fmt.Sprintf(`<binaryDataArray encodedLength="%d">
<cvParam accession="%s"/><cvParam accession="%s"/>%s
<binary>%s</binary>
</binaryDataArray>`, len(enc), typeCV, kindCV, comp, enc)
}

// testDoc builds a two-spectrum indexed mzML document: an MS1 scan
// with uncompressed 64-bit arrays and a centroided MS2 scan with
// zlib-compressed arrays (m/z 64-bit, intensity 32-bit).
func testDoc(t testing.TB) string {
	t.Helper()
	ms1 := dataArray("MS:1000523", "MS:1000514", false, encode64([]float64{699.6955, 703.11})) +
		dataArray("MS:1000523", "MS:1000515", false, encode64([]float64{1200.0, 350.0}))
	ms2 := dataArray("MS:1000523", "MS:1000514", true, deflate(t, encode64([]float64{175.119, 276.166, 377.214}))) +
		dataArray("MS:1000521", "MS:1000515", true, deflate(t, encode32([]float64{10.0, 20.0, 30.0})))

	return `<?xml version="1.0" encoding="utf-8"?>
<indexedmzML xmlns="http://psi.hupo.org/ms/mzml">
<mzML xmlns="http://psi.hupo.org/ms/mzml" version="1.1.0">
<run id="testrun">
<spectrumList count="2">
<spectrum index="0" id="scan=1" defaultArrayLength="2">
<cvParam accession="MS:1000511" name="ms level" value="1"/>
<binaryDataArrayList count="2">` + ms1 + `</binaryDataArrayList>
</spectrum>
<spectrum index="1" id="scan=2" defaultArrayLength="3">
<cvParam accession="MS:1000511" name="ms level" value="2"/>
<cvParam accession="MS:1000127" name="centroid spectrum"/>
<binaryDataArrayList count="2">` + ms2 + `</binaryDataArrayList>
</spectrum>
</spectrumList>
</run>
</mzML>
</indexedmzML>`
}

func TestRead(t *testing.T) {
	f, err := Read(strings.NewReader(testDoc(t)))
	if err != nil {
		t.Fatalf("Read: error return %v", err)
	}
	if n := f.NumSpecs(); n != 2 {
		t.Fatalf("NumSpecs: %d, should be 2", n)
	}

	p, err := f.ReadScan(0)
	if err != nil {
		t.Fatalf("ReadScan: error return %v", err)
	}
	if len(p) != 2 {
		t.Fatalf("ReadScan: %d peaks, should be 2", len(p))
	}
	if p[0].Mz < 699.695 || p[0].Mz > 699.696 {
		t.Errorf("ReadScan: peak 0 mz %v", p[0].Mz)
	}
	if p[0].Intens != 1200.0 {
		t.Errorf("ReadScan: peak 0 intensity %v, should be 1200", p[0].Intens)
	}

	// MS2 scan uses zlib compression and a 32-bit intensity array
	p, err = f.ReadScan(1)
	if err != nil {
		t.Fatalf("ReadScan: error return %v", err)
	}
	if len(p) != 3 {
		t.Fatalf("ReadScan: %d peaks, should be 3", len(p))
	}
	if math.Abs(p[2].Mz-377.214) > 1e-6 {
		t.Errorf("ReadScan: peak 2 mz %v, should be 377.214", p[2].Mz)
	}
	if p[1].Intens != 20.0 {
		t.Errorf("ReadScan: peak 1 intensity %v, should be 20", p[1].Intens)
	}

	_, err = f.ReadScan(2)
	if err != ErrInvalidScanIndex {
		t.Errorf("ReadScan: error return %v, should be ErrInvalidScanIndex", err)
	}
}

func TestScanMetadata(t *testing.T) {
	f, err := Read(strings.NewReader(testDoc(t)))
	if err != nil {
		t.Fatalf("Read: error return %v", err)
	}

	msLevel, err := f.MSLevel(1)
	if err != nil {
		t.Errorf("MSLevel: error return %v", err)
	}
	if msLevel != 2 {
		t.Errorf("MSLevel: %d, should be 2", msLevel)
	}
	_, err = f.MSLevel(-1)
	if err != ErrInvalidScanIndex {
		t.Errorf("MSLevel: error return %v, should be ErrInvalidScanIndex", err)
	}

	centroid, err := f.Centroid(1)
	if err != nil {
		t.Errorf("Centroid: error return %v", err)
	}
	if !centroid {
		t.Errorf("Centroid: false, should be true")
	}
	centroid, err = f.Centroid(0)
	if err != nil {
		t.Errorf("Centroid: error return %v", err)
	}
	if centroid {
		t.Errorf("Centroid: true, should be false")
	}

	scanIndex, err := f.ScanIndex(`scan=2`)
	if err != nil {
		t.Errorf("ScanIndex: error return %v", err)
	}
	if scanIndex != 1 {
		t.Errorf("ScanIndex: %d, should be 1", scanIndex)
	}
	_, err = f.ScanIndex(`scan=666`)
	if err != ErrInvalidScanID {
		t.Errorf("ScanIndex: error return %v, should be ErrInvalidScanID", err)
	}

	scanID, err := f.ScanID(0)
	if err != nil {
		t.Errorf("ScanID: error return %v", err)
	}
	if scanID != `scan=1` {
		t.Errorf("ScanID: %s, should be scan=1", scanID)
	}
	_, err = f.ScanID(5)
	if err != ErrInvalidScanIndex {
		t.Errorf("ScanID: error return %v, should be ErrInvalidScanIndex", err)
	}
}
