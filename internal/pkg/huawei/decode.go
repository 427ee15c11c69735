package huawei

import (
	"encoding/binary"
	"fmt"
	"strings"
	"time"

	"github.com/anicoll/huawei-solar-integration/internal/pkg/model"
)

func decode(r register, data []byte) (model.Value, error) {
	if len(data) != int(r.quantity)*2 {
		return model.Value{}, fmt.Errorf("expected %d bytes, got %d", int(r.quantity)*2, len(data))
	}

	switch r.kind {
	case typeString:
		return model.Value{Data: strings.TrimSpace(strings.Trim(string(data), "\x00"))}, nil
	case typeU16:
		return scale(r, int64(binary.BigEndian.Uint16(data))), nil
	case typeI16:
		return scale(r, int64(int16(binary.BigEndian.Uint16(data)))), nil
	case typeU32:
		return scale(r, int64(binary.BigEndian.Uint32(data))), nil
	case typeI32:
		return scale(r, int64(int32(binary.BigEndian.Uint32(data)))), nil
	case typeTimestamp:
		secs := binary.BigEndian.Uint32(data)
		return model.Value{Data: time.Unix(int64(secs), 0).UTC()}, nil
	case typeGridCode:
		code := int(binary.BigEndian.Uint16(data))
		gc, ok := gridCodes[code]
		if !ok {
			gc = model.GridCode{Standard: "unknown", Country: "unknown"}
		}
		return model.Value{Data: gc}, nil
	case typeEnum:
		code := int(binary.BigEndian.Uint16(data))
		if label, ok := r.labels[code]; ok {
			return model.Value{Data: label}, nil
		}
		return model.Value{Data: fmt.Sprintf("unknown (0x%04x)", code)}, nil
	}
	return model.Value{}, fmt.Errorf("unsupported register type %d", r.kind)
}

func scale(r register, raw int64) model.Value {
	if r.gain == 0 {
		return model.Value{Data: int(raw), Unit: r.unit}
	}
	return model.Value{Data: float64(raw) / r.gain, Unit: r.unit}
}
