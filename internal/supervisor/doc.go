// Package supervisor запускает группу дочерних процессов и ждёт их завершения.
//
// # Обзор
//
// Supervisor получает неизменяемый domain.Plan и выполняет две фазы:
//
//  1. Фаза запуска — для каждого ChildSpec в порядке плана ровно один
//     spawn-запрос. Запуски не ждут друг друга; до начала ожидания
//     отправляются все N запросов, независимо от их результата.
//  2. Фаза ожидания — по одной горутине на каждый запущенный процесс,
//     набор горутин объединяется через errgroup. Фаза заканчивается
//     тогда и только тогда, когда завершились все процессы.
//
// Дочерние процессы наследуют stdin/stdout/stderr супервизора, их вывод
// перемешивается на потоках супервизора.
//
// # Состояния
//
//	RUNNING → DONE
//
// RUNNING — хотя бы один процесс ещё работает. DONE — финальное состояние.
//
// # Политика сбоев
//
//   - PolicyContinue (по умолчанию): ошибка запуска логируется и процесс
//     пропускается; ранний выход процесса (с любым кодом) не вызывает
//     никаких действий, супервизор продолжает ждать остальных. Все сбои
//     возвращаются в domain.Run и в агрегированной ошибке Run().
//   - PolicyAbort: первый сбой (ошибка запуска или ненулевой код) приводит
//     к SIGTERM всем работающим процессам, через StopTimeout — SIGKILL.
//
// Перезапуска нет ни в одной политике.
//
// # Отмена
//
// ctx в Run не останавливает дочерние процессы: супервизор не пересылает
// им сигналы. SIGINT из терминала доходит до них через группу процессов,
// супервизор в это время продолжает ждать. ctx ограничивает только
// вызовы Observer (метрики, события, история).
//
// # Observer
//
// Observer получает события жизненного цикла: RunStarted, ChildStarted
// (для каждого процесса после фазы запуска, включая SPAWN_FAILED),
// ChildExited, RunFinished. Вызовы сериализуются. Ошибка Observer
// логируется и не влияет на запуск.
package supervisor
