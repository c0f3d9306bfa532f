package adapt

// Strategy computes a cone's next levels from its adaptation state. The
// newest sample is already in the window when Next is called.
type Strategy interface {
	Name() string
	Next(st *State) Levels
}

// None keeps levels fixed.
type None struct{}

func (None) Name() string          { return "none" }
func (None) Next(st *State) Levels { return st.Current }

// Desensitization lowers receptor sensitivity while the windowed forward
// signal sits above its reference, and ligand availability while the
// reverse signal does; both recover towards the initial levels at rate
// Lambda:
//
//	R' = R − μ·(mean(F) − F₀)·R + λ·(R₀ − R)
//	L' = L − μ·(mean(V) − V₀)·L + λ·(L₀ − L)
//
// F and V are the forward and reverse signals, F₀ and V₀ the first
// recorded ones.
type Desensitization struct{}

func (Desensitization) Name() string { return "desensitization" }

func (Desensitization) Next(st *State) Levels {
	mean, ref := st.Mean(), st.Reference()
	mu, lambda := st.Params.Mu, st.Params.Lambda
	cur, init := st.Current, st.Initial

	devF := mean.Forward - ref.Forward
	devR := mean.Reverse - ref.Reverse

	return Levels{
		Receptor: cur.Receptor - mu*devF*cur.Receptor + lambda*(init.Receptor-cur.Receptor),
		Ligand:   cur.Ligand - mu*devR*cur.Ligand + lambda*(init.Ligand-cur.Ligand),
	}
}
