package roster

import (
	"fmt"

	"github.com/Shopify/go-lua"

	"github.com/pefman/squad-combat/internal/game"
	"github.com/pefman/squad-combat/internal/models"
)

const rosterTypeName = "roster"

// script is the userdata a roster script builds and returns.
type script struct {
	Name  string
	Specs []models.CombatantSpec
}

// loadLuaFile runs a roster script. The script must return a Roster:
//
//	local r = Roster.new("skirmish")
//	r:player("Player1", {hp = 100, damage = {8, 15}})
//	r:enemy("Enemy1", {hp = 120, min_damage = 10, max_damage = 18})
//	return r
func loadLuaFile(path string) ([]models.CombatantSpec, error) {
	state := lua.NewState()
	lua.OpenLibraries(state)
	registerRosterTypes(state)

	if err := lua.LoadFile(state, path, ""); err != nil {
		return nil, fmt.Errorf("load lua: %w", err)
	}
	return runScript(state)
}

// LoadLuaString runs a roster script held in memory.
func LoadLuaString(src string) ([]models.CombatantSpec, error) {
	state := lua.NewState()
	lua.OpenLibraries(state)
	registerRosterTypes(state)

	if err := lua.LoadString(state, src); err != nil {
		return nil, fmt.Errorf("load lua: %w", err)
	}
	return runScript(state)
}

func runScript(state *lua.State) ([]models.CombatantSpec, error) {
	if err := state.ProtectedCall(0, 1, 0); err != nil {
		return nil, fmt.Errorf("run lua: %w", err)
	}
	if state.TypeOf(-1) != lua.TypeUserData {
		state.Pop(1)
		return nil, fmt.Errorf("roster script must return Roster")
	}
	ud := state.ToUserData(-1)
	state.Pop(1)
	s, ok := ud.(*script)
	if !ok || s == nil {
		return nil, fmt.Errorf("roster script returned invalid Roster")
	}
	return s.Specs, nil
}

func registerRosterTypes(state *lua.State) {
	lua.NewMetaTable(state, rosterTypeName)
	state.NewTable()
	lua.SetFunctions(state, rosterMethods, 0)
	state.SetField(-2, "__index")
	state.Pop(1)

	state.NewTable()
	lua.SetFunctions(state, rosterConstructor, 0)
	state.SetGlobal("Roster")
}

var rosterConstructor = []lua.RegistryFunction{
	{Name: "new", Function: rosterNew},
	{Name: "default", Function: rosterDefault},
}

var rosterMethods = []lua.RegistryFunction{
	{Name: "player", Function: rosterPlayer},
	{Name: "enemy", Function: rosterEnemy},
	{Name: "add", Function: rosterAdd},
	{Name: "size", Function: rosterSize},
}

func pushScript(state *lua.State, s *script) {
	state.PushUserData(s)
	lua.SetMetaTableNamed(state, rosterTypeName)
}

func rosterNew(state *lua.State) int {
	pushScript(state, &script{Name: lua.OptString(state, 1, "")})
	return 1
}

func rosterDefault(state *lua.State) int {
	pushScript(state, &script{Name: "default", Specs: DefaultSpecs()})
	return 1
}

func rosterPlayer(state *lua.State) int {
	return addMember(state, game.TeamPlayers.String(), 2)
}

func rosterEnemy(state *lua.State) int {
	return addMember(state, game.TeamEnemies.String(), 2)
}

// rosterAdd is r:add("Enemies", "Name", {...}).
func rosterAdd(state *lua.State) int {
	team := lua.CheckString(state, 2)
	return addMember(state, team, 3)
}

func rosterSize(state *lua.State) int {
	s := checkScript(state)
	state.PushInteger(len(s.Specs))
	return 1
}

// addMember reads the name at nameIdx and the options table after it, then
// returns the roster so calls can be chained.
func addMember(state *lua.State, team string, nameIdx int) int {
	s := checkScript(state)
	name := lua.CheckString(state, nameIdx)
	opts := optionalTable(state, nameIdx+1)

	spec := models.CombatantSpec{Name: name, Team: team}
	spec.MaxHP = firstInt(opts, "hp", "max_hp")
	if v, ok := opts["current_hp"]; ok {
		hp := toInt(v)
		spec.CurrentHP = &hp
	}
	switch dmg := opts["damage"].(type) {
	case nil:
	case float64:
		spec.MinDamage = toInt(dmg)
		spec.MaxDamage = spec.MinDamage
	case []any:
		if len(dmg) != 2 {
			lua.ArgumentError(state, nameIdx+1, "damage must be a number or {min, max}")
		}
		spec.MinDamage, spec.MaxDamage = toInt(dmg[0]), toInt(dmg[1])
	default:
		lua.ArgumentError(state, nameIdx+1, "damage must be a number or {min, max}")
	}
	if _, ok := opts["min_damage"]; ok {
		spec.MinDamage = toInt(opts["min_damage"])
	}
	if _, ok := opts["max_damage"]; ok {
		spec.MaxDamage = toInt(opts["max_damage"])
	}
	s.Specs = append(s.Specs, spec)

	state.PushValue(1)
	return 1
}

func checkScript(state *lua.State) *script {
	ud := lua.CheckUserData(state, 1, rosterTypeName)
	if s, ok := ud.(*script); ok && s != nil {
		return s
	}
	lua.ArgumentError(state, 1, "roster expected")
	return nil
}

func optionalTable(state *lua.State, index int) map[string]any {
	if state.IsNoneOrNil(index) || state.TypeOf(index) != lua.TypeTable {
		return map[string]any{}
	}
	return tableToMap(state, index)
}

func tableToMap(state *lua.State, index int) map[string]any {
	output := map[string]any{}
	index = state.AbsIndex(index)
	state.PushNil()
	for state.Next(index) {
		if state.TypeOf(-2) == lua.TypeString {
			key, _ := state.ToString(-2)
			output[key] = luaToGo(state, -1)
		}
		state.Pop(1)
	}
	return output
}

func luaToGo(state *lua.State, index int) any {
	switch state.TypeOf(index) {
	case lua.TypeString:
		value, _ := state.ToString(index)
		return value
	case lua.TypeNumber:
		value, _ := state.ToNumber(index)
		return value
	case lua.TypeBoolean:
		return state.ToBoolean(index)
	case lua.TypeTable:
		return arrayToGo(state, index)
	default:
		return nil
	}
}

// arrayToGo reads the sequence part of a table; keyed tables come back
// as maps.
func arrayToGo(state *lua.State, index int) any {
	index = state.AbsIndex(index)
	n := state.RawLength(index)
	if n == 0 {
		return tableToMap(state, index)
	}
	out := make([]any, 0, n)
	for i := 1; i <= n; i++ {
		state.RawGetInt(index, i)
		out = append(out, luaToGo(state, -1))
		state.Pop(1)
	}
	return out
}

func firstInt(opts map[string]any, keys ...string) int {
	for _, k := range keys {
		if v, ok := opts[k]; ok {
			return toInt(v)
		}
	}
	return 0
}

func toInt(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	}
	return 0
}
