package arcade

import "math"

// steerPlayer turns the sampled input into player velocity. Diagonals are
// normalized so every direction moves at PlayerSpeed.
func steerPlayer(p *Entity, in Input, speed float64) {
	dx, dy := float64(in.MoveX), float64(in.MoveY)
	if l := math.Hypot(dx, dy); l > 0 {
		dx /= l
		dy /= l
	}
	p.VX = dx * speed
	p.VY = dy * speed
}

// integrate advances every live entity by dt, applies motion overlays and
// marks whatever has left the play area. elapsed is absolute game time
// after this tick.
func integrate(cfg *Config, st *Store, dt, elapsed float64) {
	st.each(func(e *Entity) {
		e.PrevX, e.PrevY = e.X, e.Y
		switch e.Kind {
		case KindPlayer:
			e.X += e.VX * dt
			e.Y += e.VY * dt
			e.X = Clamp(e.X, e.W/2, cfg.WorldWidth-e.W/2)
			e.Y = Clamp(e.Y, e.H/2, cfg.WorldHeight-e.H/2)
		case KindBoss:
			moveBoss(cfg, e, dt, elapsed)
		default:
			e.X += e.VX * dt
			e.Y += e.VY * dt
			if e.Sway.Amplitude != 0 {
				e.X = swayX(e.Sway, elapsed)
			}
		}
		if outside(e, cfg.WorldWidth, cfg.WorldHeight) {
			st.remove(e)
		}
	})
}

func swayX(s Sway, elapsed float64) float64 {
	return s.BaseX + math.Sin(elapsed*s.Speed+s.Phase)*s.Amplitude
}

// moveBoss descends at VY until the hover line, then bobs around it.
func moveBoss(cfg *Config, b *Entity, dt, elapsed float64) {
	if !b.Hovering {
		b.Y += b.VY * dt
		if b.Y >= cfg.BossHoverY {
			b.Y = cfg.BossHoverY
			b.VY = 0
			b.Hovering = true
			b.HoverSince = elapsed
		}
	} else {
		b.Y = cfg.BossHoverY + math.Sin((elapsed-b.HoverSince)*cfg.BossBobSpeed)*cfg.BossBobAmp
	}
	if b.Sway.Amplitude != 0 {
		b.X = swayX(b.Sway, elapsed)
	}
}

// Clamp restricts v to [min, max].
func Clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
