package index

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
)

const fieldStatsSize = 12

// FieldStats are the per segment statistics BM25 needs: the number of
// documents with at least one token in the field and the total number of
// tokens.
type FieldStats struct {
	DocCount    uint32
	SumTermFreq uint64
}

func fieldStatsFilename(directory, segment, fieldName string) string {
	return filepath.Join(directory, "segment."+segment+"."+fieldName+".stats")
}

func writeFieldStats(directory, segment, fieldName string, stats FieldStats) error {
	buffer := make([]byte, 0, fieldStatsSize)
	buffer = binary.BigEndian.AppendUint32(buffer, stats.DocCount)
	buffer = binary.BigEndian.AppendUint64(buffer, stats.SumTermFreq)

	file, err := createFile(fieldStatsFilename(directory, segment, fieldName))
	if err != nil {
		return err
	}

	if _, err := file.Write(buffer); err != nil {
		_ = file.Close()
		return err
	}

	return file.Close()
}

func readFieldStats(directory, segment, fieldName string) (FieldStats, error) {
	buffer, err := os.ReadFile(fieldStatsFilename(directory, segment, fieldName))
	if err != nil {
		return FieldStats{}, err
	}

	if len(buffer) != fieldStatsSize {
		return FieldStats{}, fmt.Errorf("field stats %s: expected %d bytes, got %d", fieldName, fieldStatsSize, len(buffer))
	}

	return FieldStats{
		DocCount:    binary.BigEndian.Uint32(buffer),
		SumTermFreq: binary.BigEndian.Uint64(buffer[4:]),
	}, nil
}
