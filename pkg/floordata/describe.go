package floordata

// ChunkInfo is a flattened, serializable description of one chunk.
type ChunkInfo struct {
	Offset     int           `json:"offset" yaml:"offset"`
	Type       string        `json:"type" yaml:"type"`
	IsLast     bool          `json:"is_last" yaml:"is_last"`
	Condition  string        `json:"condition,omitempty" yaml:"condition,omitempty"`
	Payload    *uint16       `json:"payload,omitempty" yaml:"payload,omitempty"`
	Slant      *Slant        `json:"slant,omitempty" yaml:"slant,omitempty"`
	Activation *uint16       `json:"activation,omitempty" yaml:"activation,omitempty"`
	Commands   []CommandInfo `json:"commands,omitempty" yaml:"commands,omitempty"`
}

// CommandInfo describes one command of a sequence.
type CommandInfo struct {
	Offset    int               `json:"offset" yaml:"offset"`
	Opcode    string            `json:"opcode" yaml:"opcode"`
	Parameter uint16            `json:"parameter" yaml:"parameter"`
	IsLast    bool              `json:"is_last" yaml:"is_last"`
	Camera    *CameraParameters `json:"camera,omitempty" yaml:"camera,omitempty"`
}

// Describe decodes every chunk reachable from r.
func Describe(r Ref) []ChunkInfo {
	var out []ChunkInfo
	for c := range r.Chunks() {
		info := ChunkInfo{
			Offset: c.Offset(),
			Type:   c.Type.String(),
			IsLast: c.IsLast,
		}
		switch c.Type {
		case ChunkFloorSlant, ChunkCeilingSlant:
			s := c.Slant()
			info.Slant = &s
		case ChunkBoundaryRoom:
			p := uint16(c.Payload())
			info.Payload = &p
		case ChunkCommandSequence:
			info.Condition = c.SequenceCondition.String()
			a := uint16(c.Activation())
			info.Activation = &a
			for cmd := range c.Commands() {
				ci := CommandInfo{
					Offset:    cmd.Offset,
					Opcode:    cmd.Opcode.String(),
					Parameter: cmd.Parameter,
					IsLast:    cmd.IsLast,
				}
				if cmd.Opcode == OpSwitchCamera {
					cam := cmd.Camera
					ci.Camera = &cam
				}
				info.Commands = append(info.Commands, ci)
			}
		}
		out = append(out, info)
	}
	return out
}
