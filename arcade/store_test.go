package arcade

import "testing"

func TestDroppedAddKeepsIDs(t *testing.T) {
	cfg := testConfig()
	st := newTestStore(t, &cfg)

	if st.add(&Entity{Kind: KindPlayer}) {
		t.Error("a second player should be refused")
	}
	boss := &Entity{Kind: KindBoss, HP: 1}
	if !st.add(boss) {
		t.Fatal("expected the boss to be added")
	}
	second := &Entity{Kind: KindBoss, HP: 1}
	if st.add(second) {
		t.Error("a second boss should be refused")
	}
	if second.ID != 0 {
		t.Errorf("refused entity should get no ID, got %d", second.ID)
	}

	enemy := &Entity{Kind: KindEnemy}
	st.add(enemy)
	if st.Player.ID != 1 || boss.ID != 2 || enemy.ID != 3 {
		t.Errorf("expected IDs 1, 2, 3, got %d, %d, %d", st.Player.ID, boss.ID, enemy.ID)
	}
}

func TestAddAtCapacityKeepsIDs(t *testing.T) {
	cfg := testConfig()
	cfg.MaxEntities = 1
	st := newTestStore(t, &cfg)

	st.add(&Entity{Kind: KindEnemy})
	dropped := &Entity{Kind: KindShot}
	if st.add(dropped) {
		t.Fatal("expected the add to be dropped at capacity")
	}
	if dropped.ID != 0 {
		t.Errorf("dropped entity should get no ID, got %d", dropped.ID)
	}
}
