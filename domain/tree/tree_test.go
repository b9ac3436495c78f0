package tree

import (
	"testing"

	"cladeshift/domain/core"
)

func tip(id string) *ParsedNode { return &ParsedNode{SampleID: id} }

func clade(label string, children ...*ParsedNode) *ParsedNode {
	return &ParsedNode{Label: label, Children: children}
}

// fivePointTree builds the 5-tip example: ((s1,s2,s3),(s4,s5)) with
// s1-s3 targeted.
func fivePointTree(t *testing.T) *Tree {
	t.Helper()
	root := clade("root",
		clade("left", tip("s1"), tip("s2"), tip("s3")),
		clade("right", tip("s4"), tip("s5")),
	)
	labels := map[core.SampleID]bool{
		"s1": true, "s2": true, "s3": true, "s4": false, "s5": false,
	}
	tr, err := Build("gut16s", root, labels)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return tr
}

func TestBuild_StatsInvariants(t *testing.T) {
	tr := fivePointTree(t)

	for _, id := range tr.Preorder() {
		st := tr.Stats(id)
		if st.TargetedCount+st.OtherCount != st.TotalTips {
			t.Errorf("node %d: targeted %d + other %d != total %d",
				id, st.TargetedCount, st.OtherCount, st.TotalTips)
		}
		if tr.IsTip(id) {
			if st.TotalTips != 1 {
				t.Errorf("tip %d: total_tips = %d, want 1", id, st.TotalTips)
			}
			continue
		}
		sum := 0
		for _, c := range tr.Children(id) {
			sum += tr.Stats(c).TotalTips
		}
		if sum != st.TotalTips {
			t.Errorf("node %d: child total sum %d != total %d", id, sum, st.TotalTips)
		}
	}

	root := tr.Stats(tr.Root())
	if root.TargetedCount != 3 || root.OtherCount != 2 || root.TotalTips != 5 {
		t.Errorf("root stats = %+v, want {3 2 5}", root)
	}
	if tr.TargetedTotal() != 3 {
		t.Errorf("TargetedTotal = %d, want 3", tr.TargetedTotal())
	}
}

func TestBuild_PreorderAndTipRanges(t *testing.T) {
	tr := fivePointTree(t)

	// Pre-order: root, left, s1, s2, s3, right, s4, s5
	wantLabels := []string{"root", "left", "s1", "s2", "s3", "right", "s4", "s5"}
	order := tr.Preorder()
	if len(order) != len(wantLabels) {
		t.Fatalf("preorder length = %d, want %d", len(order), len(wantLabels))
	}
	for i, id := range order {
		if tr.Label(id) != wantLabels[i] {
			t.Errorf("preorder[%d] = %s, want %s", i, tr.Label(id), wantLabels[i])
		}
	}

	left := order[1]
	start, end := tr.TipRange(left)
	if start != 0 || end != 3 {
		t.Errorf("left tip range = [%d,%d), want [0,3)", start, end)
	}
	right := order[5]
	start, end = tr.TipRange(right)
	if start != 3 || end != 5 {
		t.Errorf("right tip range = [%d,%d), want [3,5)", start, end)
	}

	got := tr.TipSampleIDs(left)
	want := []core.SampleID{"s1", "s2", "s3"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("left tips[%d] = %s, want %s", i, got[i], want[i])
		}
	}

	comp := tr.ComplementSampleIDs(left)
	if len(comp) != 2 || comp[0] != "s4" || comp[1] != "s5" {
		t.Errorf("left complement = %v, want [s4 s5]", comp)
	}
}

func TestBuild_DuplicateTip(t *testing.T) {
	root := clade("root", tip("s1"), tip("s1"))
	labels := map[core.SampleID]bool{"s1": true}

	_, err := Build("dup", root, labels)
	if !core.IsMalformedTreeError(err) {
		t.Fatalf("expected malformed tree error, got %v", err)
	}
}

func TestBuild_SharedChild(t *testing.T) {
	shared := tip("s1")
	root := clade("root", clade("a", shared), clade("b", shared))
	labels := map[core.SampleID]bool{"s1": true}

	_, err := Build("shared", root, labels)
	if !core.IsMalformedTreeError(err) {
		t.Fatalf("expected malformed tree error, got %v", err)
	}
}

func TestBuild_Cycle(t *testing.T) {
	a := clade("a")
	b := clade("b", a)
	a.Children = append(a.Children, b)
	root := clade("root", a)

	_, err := Build("cyclic", root, nil)
	if !core.IsMalformedTreeError(err) {
		t.Fatalf("expected malformed tree error, got %v", err)
	}
}

func TestBuild_UnlabeledSample(t *testing.T) {
	root := clade("root", tip("s1"), tip("mystery"))
	labels := map[core.SampleID]bool{"s1": true}

	_, err := Build("partial", root, labels)
	if !core.IsUnlabeledSampleError(err) {
		t.Fatalf("expected unlabeled sample error, got %v", err)
	}
}

func TestBuild_SingleTipTree(t *testing.T) {
	tr, err := Build("solo", tip("only"), map[core.SampleID]bool{"only": true})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if tr.Len() != 1 || tr.TipCount() != 1 {
		t.Errorf("Len = %d, TipCount = %d, want 1, 1", tr.Len(), tr.TipCount())
	}
	st := tr.Stats(tr.Root())
	if st.TargetedCount != 1 || st.TotalTips != 1 {
		t.Errorf("stats = %+v, want {1 0 1}", st)
	}
}

func TestBuild_NilRoot(t *testing.T) {
	_, err := Build("empty", nil, nil)
	if !core.IsMalformedTreeError(err) {
		t.Fatalf("expected malformed tree error, got %v", err)
	}
}
