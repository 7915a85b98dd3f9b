package ir

// dce removes operation instructions with no users, iterating to a
// fixpoint so chains of dead operations disappear in one run. Controls
// are never removed: they act by transferring control, not by being
// consumed.
type dce struct{}

// DeadCodeElimination returns the transform removing unused operation
// instructions. Dangling instructions are an explicit rewrite, never a
// side effect of edge removal, so dropping the last use of a value does
// not delete its producer until this transform runs.
func DeadCodeElimination() Transform { return dce{} }

func (dce) Name() string { return "dce" }

func (dce) Run(m *Module) (bool, error) {
	changed := false
	for {
		removedAny := false
		for _, f := range m.Functions() {
			for _, b := range f.Blocks() {
				// Iterate backwards so users die before their producers
				// within a single sweep.
				instrs := b.Instructions()
				for ii := len(instrs) - 1; ii >= 0; ii-- {
					instr := instrs[ii]
					if instr.IsControl() || instr.def.NumUsers() > 0 {
						continue
					}
					b.Remove(instr)
					instr.ReleaseUses()
					removedAny = true
				}
			}
		}
		if !removedAny {
			break
		}
		changed = true
	}
	return changed, nil
}
