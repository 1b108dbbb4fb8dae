package comments

import "testing"

func TestThreadBuildsReplyTree(t *testing.T) {
	t.Parallel()

	root := &CommentWithAuthor{Comment: Comment{ID: "c1"}}
	reply := &CommentWithAuthor{Comment: Comment{ID: "c2", ParentID: "c1"}}
	nested := &CommentWithAuthor{Comment: Comment{ID: "c3", ParentID: "c2"}}
	other := &CommentWithAuthor{Comment: Comment{ID: "c4"}}

	roots := thread([]*CommentWithAuthor{root, reply, nested, other})
	if len(roots) != 2 {
		t.Fatalf("roots = %d, want 2", len(roots))
	}
	if roots[0].ID != "c1" || roots[1].ID != "c4" {
		t.Fatalf("unexpected root order: %s, %s", roots[0].ID, roots[1].ID)
	}
	if len(roots[0].Replies) != 1 || roots[0].Replies[0].ID != "c2" {
		t.Fatalf("c1 should have reply c2")
	}
	if len(roots[0].Replies[0].Replies) != 1 || roots[0].Replies[0].Replies[0].ID != "c3" {
		t.Fatalf("c2 should have reply c3")
	}
}

func TestThreadOrphanSurfacesAtTopLevel(t *testing.T) {
	t.Parallel()

	orphan := &CommentWithAuthor{Comment: Comment{ID: "c9", ParentID: "gone"}}
	roots := thread([]*CommentWithAuthor{orphan})
	if len(roots) != 1 || roots[0].ID != "c9" {
		t.Fatalf("orphaned reply should become a root")
	}
}
