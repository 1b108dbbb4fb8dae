package endorsements

import "testing"

func TestSortGroupsByCountStable(t *testing.T) {
	t.Parallel()

	groups := []SkillGroup{
		{Skill: "debugging", Count: 2},
		{Skill: "planning", Count: 5},
		{Skill: "prompting", Count: 5},
		{Skill: "reasoning", Count: 1},
	}
	sortGroups(groups)

	want := []string{"planning", "prompting", "debugging", "reasoning"}
	for i, skill := range want {
		if groups[i].Skill != skill {
			t.Fatalf("groups[%d] = %s, want %s", i, groups[i].Skill, skill)
		}
	}
}
