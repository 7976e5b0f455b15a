// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package epg

// Assemble builds the merged document. It emits one channel per distinct
// canonical name, in acceptance order, identified by the first raw id that
// produced it. Programmes follow in the order given; their channel reference is
// pointed at that emitted id. Nothing is matched or filtered here.
func Assemble(accepted *AcceptedChannels, programmes []Programme) *TV {
	emitted := make(map[string]string, accepted.Len()) // canonical -> emitted id
	channels := make([]Channel, 0, accepted.Len())
	for _, ac := range accepted.order {
		if _, ok := emitted[ac.Display]; ok {
			continue
		}
		emitted[ac.Display] = ac.ID
		channels = append(channels, Channel{
			ID:          ac.ID,
			DisplayName: []string{ac.Display},
			Icon:        ac.Icon,
		})
	}

	progs := make([]Programme, len(programmes))
	for i, p := range programmes {
		if ac, ok := accepted.Lookup(p.Channel); ok {
			p.Channel = emitted[ac.Display]
		}
		progs[i] = p
	}

	return &TV{
		Generator: Generator,
		Channels:  channels,
		Programs:  progs,
	}
}
