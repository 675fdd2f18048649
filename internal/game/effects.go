package game

import (
	"fmt"

	"github.com/ValleyOfWalls/wildhand/internal/card"
	"github.com/ValleyOfWalls/wildhand/internal/log"
)

// resolvePlay pays for a card, resolves its effect clauses in order, and
// moves the spent instance to the discard pile (or exhausts it for powers).
// Illegal plays are refused with a logged warning and the turn continues.
func (e *Encounter) resolvePlay(t *Team, play Play) error {
	gs := e.State
	src := play.Source
	ci := play.Card

	if src == nil || ci == nil {
		e.log(log.NewPlayRefusedEvent(gs.Round, t.Index(), "empty play"))
		return nil
	}
	if ci.Data.Cost > t.Energy {
		e.log(log.NewPlayRefusedEvent(gs.Round, t.Index(),
			fmt.Sprintf("%s cannot afford %s (cost %d, %d energy left)", src.Name, ci.Data.Name, ci.Data.Cost, t.Energy)))
		return nil
	}
	if !src.RemoveFromHand(ci) {
		e.log(log.NewPlayRefusedEvent(gs.Round, t.Index(),
			fmt.Sprintf("%s is not holding %s", src.Name, ci.Data.Name)))
		return nil
	}

	t.Energy -= ci.Data.Cost
	e.log(log.NewPlayEvent(gs.Round, src.Team, src.Name, ci.Data.Name, int(ci.Data.ID), ci.ID, ci.Data.Cost))

	// One pick covers every single-target clause on the card, so a card that
	// damages and poisons hits the same enemy with both.
	pickedEnemy, err := e.pickFor(src, ci, card.TargetSingleEnemy)
	if err != nil {
		return err
	}
	pickedAlly, err := e.pickFor(src, ci, card.TargetSingleAlly)
	if err != nil {
		return err
	}

	for _, eff := range ci.Data.Effects {
		e.applyEffect(src, eff, pickedEnemy, pickedAlly)
	}

	if ci.Data.Type == card.TypePower {
		src.Exhaust(ci)
		e.log(log.NewExhaustEvent(gs.Round, src.Team, src.Name, ci.Data.Name, ci.ID))
	} else {
		src.Deck.DiscardCard(ci.Data)
	}

	e.checkDefeat()
	return nil
}

// pickFor resolves the single-target choice for the given target mode, if
// the card has any clause using it. With one candidate the pick is
// automatic; with none the clauses fizzle.
func (e *Encounter) pickFor(src *Combatant, ci *CardInstance, mode card.Target) (*Combatant, error) {
	needs := false
	for _, eff := range ci.Data.Effects {
		if eff.Target == mode {
			needs = true
			break
		}
	}
	if !needs {
		return nil, nil
	}

	gs := e.State
	var candidates []*Combatant
	var kind string
	if mode == card.TargetSingleEnemy {
		candidates = gs.EnemiesOf(src.Team)
		kind = "an enemy"
	} else {
		candidates = gs.AlliesOf(src)
		kind = "an ally"
	}

	switch len(candidates) {
	case 0:
		return nil, nil
	case 1:
		return candidates[0], nil
	}

	prompt := fmt.Sprintf("Choose %s target for %s", kind, ci.Data.Name)
	chosen, err := e.Controllers[src.Team].ChooseTarget(e.ctx, gs, prompt, candidates)
	if err != nil {
		return nil, fmt.Errorf("choose target: %w", err)
	}
	for _, cand := range candidates {
		if cand == chosen {
			return chosen, nil
		}
	}
	e.log(log.NewPlayRefusedEvent(gs.Round, src.Team,
		fmt.Sprintf("ignoring illegal target for %s, using %s", ci.Data.Name, candidates[0].Name)))
	return candidates[0], nil
}

// applyEffect applies one effect clause to its resolved target set.
func (e *Encounter) applyEffect(src *Combatant, eff card.Effect, pickedEnemy, pickedAlly *Combatant) {
	gs := e.State
	for _, tgt := range e.effectTargets(src, eff.Target, pickedEnemy, pickedAlly) {
		switch eff.Kind {
		case card.EffectDamage:
			e.attack(src, tgt, eff.Amount)

		case card.EffectBlock:
			tgt.Block += eff.Amount
			e.log(log.NewBlockEvent(gs.Round, tgt.Team, tgt.Name, eff.Amount, tgt.Block))

		case card.EffectHeal:
			before := tgt.HP
			tgt.HP += eff.Amount
			if tgt.HP > tgt.MaxHP {
				tgt.HP = tgt.MaxHP
			}
			e.log(log.NewHealEvent(gs.Round, tgt.Team, tgt.Name, tgt.HP-before, tgt.HP))

		case card.EffectDraw:
			for i := 0; i < eff.Amount; i++ {
				if e.drawOne(tgt) == nil {
					break
				}
			}

		case card.EffectEnergy:
			t := gs.Teams[src.Team]
			t.Energy += eff.Amount
			e.log(log.NewEnergyEvent(gs.Round, src.Team, eff.Amount, t.Energy))

		case card.EffectStrength, card.EffectWeak, card.EffectVulnerable, card.EffectPoison, card.EffectThorns:
			st := statusFor(eff.Kind)
			tgt.AddStatus(st, eff.Amount)
			e.log(log.NewStatusApplyEvent(gs.Round, src.Team, src.Name, tgt.Name, st.String(), eff.Amount, tgt.Status(st)))

		case card.EffectCleanse:
			e.log(log.NewCleanseEvent(gs.Round, tgt.Team, tgt.Name, tgt.Cleanse()))
		}
	}
}

// effectTargets expands a target mode into concrete combatants. Picked
// targets that died earlier in the same card fizzle.
func (e *Encounter) effectTargets(src *Combatant, t card.Target, pickedEnemy, pickedAlly *Combatant) []*Combatant {
	gs := e.State
	switch t {
	case card.TargetSelf:
		return []*Combatant{src}
	case card.TargetSingleEnemy:
		if pickedEnemy != nil && pickedEnemy.Alive() {
			return []*Combatant{pickedEnemy}
		}
	case card.TargetAllEnemies:
		return gs.EnemiesOf(src.Team)
	case card.TargetSingleAlly:
		if pickedAlly != nil && pickedAlly.Alive() {
			return []*Combatant{pickedAlly}
		}
	case card.TargetAllAllies:
		return gs.AlliesOf(src)
	}
	return nil
}

func statusFor(k card.EffectKind) Status {
	switch k {
	case card.EffectStrength:
		return StatusStrength
	case card.EffectWeak:
		return StatusWeak
	case card.EffectVulnerable:
		return StatusVulnerable
	case card.EffectPoison:
		return StatusPoison
	default:
		return StatusThorns
	}
}

// attack applies one damage clause from src to target. Strength raises the
// base, weak cuts it to 75%, vulnerable raises it to 150%; block absorbs
// before HP. A thorny target retaliates after the hit lands.
func (e *Encounter) attack(src, target *Combatant, base int) {
	gs := e.State

	amount := base + src.Status(StatusStrength)
	if src.Status(StatusWeak) > 0 {
		amount = amount * 3 / 4
	}
	if target.Status(StatusVulnerable) > 0 {
		amount = amount * 3 / 2
	}
	if amount < 0 {
		amount = 0
	}

	blocked := amount
	if blocked > target.Block {
		blocked = target.Block
	}
	target.Block -= blocked
	dealt := amount - blocked

	oldHP := target.HP
	target.HP -= dealt
	if target.HP < 0 {
		target.HP = 0
	}
	e.log(log.NewDamageEvent(gs.Round, src.Team, src.Name, target.Name, amount, blocked, oldHP, target.HP))
	e.afterDamage(target)

	if th := target.Status(StatusThorns); th > 0 && src.Alive() {
		e.thorns(target, src, th)
	}
}

// thorns deals retaliation damage to the attacker. It ignores strength,
// weak and vulnerable; block still absorbs it. Thorns never chain.
func (e *Encounter) thorns(source, attacker *Combatant, amount int) {
	gs := e.State

	blocked := amount
	if blocked > attacker.Block {
		blocked = attacker.Block
	}
	attacker.Block -= blocked
	dealt := amount - blocked

	attacker.HP -= dealt
	if attacker.HP < 0 {
		attacker.HP = 0
	}
	e.log(log.NewThornsEvent(gs.Round, source.Team, source.Name, attacker.Name, amount))
	e.afterDamage(attacker)
}

// afterDamage retires a pet whose HP just reached zero. Handler defeat is
// resolved by checkDefeat once the current card finishes resolving.
func (e *Encounter) afterDamage(target *Combatant) {
	if target.Kind == KindPet && target.HP <= 0 && !target.Retired {
		e.retirePet(target)
	}
}

// retirePet takes a downed pet out of the encounter. Its hand goes to its
// discard pile and its block and statuses are dropped.
func (e *Encounter) retirePet(p *Combatant) {
	gs := e.State
	p.Retired = true
	p.Block = 0
	for s := range p.Statuses {
		delete(p.Statuses, s)
	}
	for _, ci := range p.DiscardHand() {
		e.log(log.NewDiscardEvent(gs.Round, p.Team, p.Name, ci.Data.Name, ci.ID))
	}
	e.log(log.NewPetRetireEvent(gs.Round, p.Team, p.Name))
}

// checkDefeat ends the encounter when a handler is down. Both handlers down
// at once is a draw.
func (e *Encounter) checkDefeat() {
	gs := e.State
	if gs.Over {
		return
	}
	d0 := gs.Teams[0].Defeated()
	d1 := gs.Teams[1].Defeated()
	if !d0 && !d1 {
		return
	}
	if d0 {
		e.log(log.NewHandlerDownEvent(gs.Round, 0, gs.Teams[0].Handler.Name))
	}
	if d1 {
		e.log(log.NewHandlerDownEvent(gs.Round, 1, gs.Teams[1].Handler.Name))
	}
	gs.Over = true
	switch {
	case d0 && d1:
		gs.Winner = -1
		gs.Result = "both handlers down"
		e.log(log.NewDrawGameEvent(gs.Round, gs.Result))
	case d0:
		gs.Winner = 1
		gs.Result = fmt.Sprintf("%s down", gs.Teams[0].Handler.Name)
		e.log(log.NewWinEvent(gs.Round, 1, gs.Result))
	default:
		gs.Winner = 0
		gs.Result = fmt.Sprintf("%s down", gs.Teams[1].Handler.Name)
		e.log(log.NewWinEvent(gs.Round, 0, gs.Result))
	}
}
